package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/smallbiznis/kudos/internal/migration"
	"github.com/smallbiznis/kudos/internal/reputation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration.AutoMigrate(conn))
	return conn
}

func newService(t *testing.T) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    newTestDB(t),
		Log:   zap.NewNop(),
		GenID: node,
	})
}

func TestEnsureUser_Idempotent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	userID := snowflake.ID(1001)

	rec, err := svc.EnsureUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.KarmaPoints)
	assert.Equal(t, int64(0), rec.RewardPoints)
	assert.Equal(t, domain.TierBronze, rec.RankTier)

	again, err := svc.EnsureUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, rec.UserID, again.UserID)
	assert.Equal(t, int64(0), again.KarmaPoints)
}

func TestGet_UnknownUser(t *testing.T) {
	svc := newService(t)

	_, err := svc.Get(context.Background(), snowflake.ID(404))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyAction_AwardsConfiguredDeltas(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	userID := snowflake.ID(2001)

	_, err := svc.EnsureUser(ctx, userID)
	require.NoError(t, err)

	result, err := svc.ApplyAction(ctx, domain.ApplyActionRequest{
		UserID:    userID,
		Action:    domain.ActionCompleteLesson,
		SubjectID: "lesson-7",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.KarmaDelta)
	assert.Equal(t, int64(5), result.RewardDelta)
	assert.Equal(t, int64(10), result.Reputation.KarmaPoints)
	assert.Equal(t, int64(5), result.Reputation.RewardPoints)

	rec, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.KarmaPoints)
	assert.Equal(t, int64(5), rec.RewardPoints)
}

func TestApplyAction_DuplicateGuard(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	userID := snowflake.ID(2002)

	_, err := svc.EnsureUser(ctx, userID)
	require.NoError(t, err)

	req := domain.ApplyActionRequest{
		UserID:    userID,
		Action:    domain.ActionCompleteLesson,
		SubjectID: "lesson-1",
	}

	_, err = svc.ApplyAction(ctx, req)
	require.NoError(t, err)

	_, err = svc.ApplyAction(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicateAction)

	// Balances unchanged by the rejected duplicate.
	rec, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.KarmaPoints)
	assert.Equal(t, int64(5), rec.RewardPoints)

	// A different subject is a distinct logical event.
	_, err = svc.ApplyAction(ctx, domain.ApplyActionRequest{
		UserID:    userID,
		Action:    domain.ActionCompleteLesson,
		SubjectID: "lesson-2",
	})
	require.NoError(t, err)

	rec, err = svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), rec.KarmaPoints)
}

func TestApplyAction_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.ApplyAction(ctx, domain.ApplyActionRequest{
		UserID:    snowflake.ID(1),
		Action:    domain.Action("invent_points"),
		SubjectID: "x",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)

	_, err = svc.ApplyAction(ctx, domain.ApplyActionRequest{
		UserID:    snowflake.ID(1),
		Action:    domain.ActionCreatePost,
		SubjectID: "  ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSubject)

	// Vote-driven adjustments are not reportable.
	_, err = svc.ApplyAction(ctx, domain.ApplyActionRequest{
		UserID:    snowflake.ID(1),
		Action:    domain.ActionReceiveUpvote,
		SubjectID: "post-1",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)

	_, err = svc.ApplyAction(ctx, domain.ApplyActionRequest{
		UserID:    snowflake.ID(1),
		Action:    domain.ActionCreatePost,
		SubjectID: "post-9",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyAction_RankRecomputedWithKarma(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	userID := snowflake.ID(2003)

	_, err := svc.EnsureUser(ctx, userID)
	require.NoError(t, err)

	// 50 karma per paper: two papers reach Silver (100).
	for _, subject := range []string{"paper-1", "paper-2"} {
		_, err := svc.ApplyAction(ctx, domain.ApplyActionRequest{
			UserID:    userID,
			Action:    domain.ActionPublishResearch,
			SubjectID: subject,
		})
		require.NoError(t, err)
	}

	rec, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), rec.KarmaPoints)
	assert.Equal(t, domain.TierSilver, rec.RankTier)
}

func TestAdjustTx_ClampsBalancesAtZero(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	conn := newTestDB(t)
	svc := NewService(Params{DB: conn, Log: zap.NewNop(), GenID: node}).(*Service)

	ctx := context.Background()
	userID := snowflake.ID(2004)
	_, err = svc.EnsureUser(ctx, userID)
	require.NoError(t, err)

	err = conn.Transaction(func(tx *gorm.DB) error {
		_, err := svc.AdjustTx(ctx, tx, userID, -5, 0, domain.ActionUpvoteRevoked)
		return err
	})
	require.NoError(t, err)

	rec, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.KarmaPoints)
}

func TestLogs_NewestFirst(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	userID := snowflake.ID(2005)

	_, err := svc.EnsureUser(ctx, userID)
	require.NoError(t, err)

	for _, subject := range []string{"p1", "p2", "p3"} {
		_, err := svc.ApplyAction(ctx, domain.ApplyActionRequest{
			UserID:    userID,
			Action:    domain.ActionCreatePost,
			SubjectID: subject,
		})
		require.NoError(t, err)
	}

	logs, err := svc.Logs(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Greater(t, int64(logs[0].ID), int64(logs[1].ID))
	assert.Equal(t, int64(15), logs[0].KarmaAfter)
	assert.Equal(t, int64(10), logs[1].KarmaAfter)
}
