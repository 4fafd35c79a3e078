package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	kclock "github.com/smallbiznis/kudos/internal/clock"
	"github.com/smallbiznis/kudos/internal/config"
	leaderboardservice "github.com/smallbiznis/kudos/internal/leaderboard/service"
	"github.com/smallbiznis/kudos/internal/migration"
	reputationservice "github.com/smallbiznis/kudos/internal/reputation/service"
	shopservice "github.com/smallbiznis/kudos/internal/shop/service"
	streakservice "github.com/smallbiznis/kudos/internal/streak/service"
	voteservice "github.com/smallbiznis/kudos/internal/vote/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) (*Server, *kclock.FakeClock) {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	cfg := config.Config{Environment: "test"}
	catalog := config.NewStaticCatalogHolder(config.DefaultShopConfig())
	clk := kclock.NewFakeClock(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))

	repSvc := reputationservice.NewService(reputationservice.Params{
		DB: conn, Log: log, GenID: node,
	})
	voteSvc := voteservice.NewService(voteservice.Params{
		DB: conn, Log: log, GenID: node, Reputation: repSvc,
	})
	streakSvc := streakservice.NewService(streakservice.Params{
		DB: conn, Log: log,
	})
	shopSvc := shopservice.NewService(shopservice.Params{
		DB: conn, Log: log, GenID: node, Catalog: catalog,
	})
	leaderboardSvc := leaderboardservice.NewService(leaderboardservice.Params{
		DB: conn, Log: log,
	})

	engine := NewEngine(cfg, log, prometheus.NewRegistry())
	srv := NewServer(ServerParams{
		Gin:            engine,
		Cfg:            cfg,
		Clock:          clk,
		Catalog:        catalog,
		ReputationSvc:  repSvc,
		VoteSvc:        voteSvc,
		StreakSvc:      streakSvc,
		ShopSvc:        shopSvc,
		LeaderboardSvc: leaderboardSvc,
	})
	return srv, clk
}

func doJSON(t *testing.T, srv *Server, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func TestVoteFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/users", "", map[string]string{"user_id": "100"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/v1/targets", "", map[string]string{
		"target_type": "post", "target_id": "9000", "owner_id": "100",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Voting requires an identity.
	rec = doJSON(t, srv, http.MethodPost, "/v1/votes", "", map[string]string{
		"target_type": "post", "target_id": "9000", "desired": "upvoted",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/v1/votes", "200", map[string]string{
		"target_type": "post", "target_id": "9000", "desired": "upvoted",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var voteResp struct {
		Data struct {
			State       string `json:"state"`
			UpvoteCount int64  `json:"upvote_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &voteResp))
	assert.Equal(t, "upvoted", voteResp.Data.State)
	assert.Equal(t, int64(1), voteResp.Data.UpvoteCount)

	// The owner earned the upvote karma.
	rec = doJSON(t, srv, http.MethodGet, "/v1/users/100/reputation", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var repResp struct {
		Data struct {
			KarmaPoints int64 `json:"karma_points"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &repResp))
	assert.Equal(t, int64(1), repResp.Data.KarmaPoints)

	// Unknown target maps to 404.
	rec = doJSON(t, srv, http.MethodPost, "/v1/votes", "200", map[string]string{
		"target_type": "post", "target_id": "77777", "desired": "upvoted",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActionAndLoginFlow(t *testing.T) {
	srv, clk := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/users", "", map[string]string{"user_id": "300"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/v1/actions", "300", map[string]string{
		"action": "complete_lesson", "subject_id": "lesson-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Re-reporting the same lesson conflicts.
	rec = doJSON(t, srv, http.MethodPost, "/v1/actions", "300", map[string]string{
		"action": "complete_lesson", "subject_id": "lesson-1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/v1/logins", "300", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var loginResp struct {
		Data struct {
			Streak int `json:"streak"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	assert.Equal(t, 1, loginResp.Data.Streak)

	clk.Advance(24 * time.Hour)
	rec = doJSON(t, srv, http.MethodPost, "/v1/logins", "300", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	assert.Equal(t, 2, loginResp.Data.Streak)

	rec = doJSON(t, srv, http.MethodGet, "/v1/leaderboard?metric=karma&limit=5", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/v1/leaderboard?metric=charisma", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/v1/shop/catalog", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
