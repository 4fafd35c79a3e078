package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/kudos/internal/clock"
	"github.com/smallbiznis/kudos/internal/config"
	"github.com/smallbiznis/kudos/internal/leaderboard"
	leaderboarddomain "github.com/smallbiznis/kudos/internal/leaderboard/domain"
	obsmetrics "github.com/smallbiznis/kudos/internal/observability/metrics"
	"github.com/smallbiznis/kudos/internal/reputation"
	reputationdomain "github.com/smallbiznis/kudos/internal/reputation/domain"
	"github.com/smallbiznis/kudos/internal/shop"
	shopdomain "github.com/smallbiznis/kudos/internal/shop/domain"
	"github.com/smallbiznis/kudos/internal/streak"
	streakdomain "github.com/smallbiznis/kudos/internal/streak/domain"
	"github.com/smallbiznis/kudos/internal/vote"
	votedomain "github.com/smallbiznis/kudos/internal/vote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	obsmetrics.Module,
	reputation.Module,
	vote.Module,
	streak.Module,
	shop.Module,
	leaderboard.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {}),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Clock          clock.Clock
	Catalog        *config.ShopCatalogHolder
	ReputationSvc  reputationdomain.Service
	VoteSvc        votedomain.Service
	StreakSvc      streakdomain.Service
	ShopSvc        shopdomain.Service
	LeaderboardSvc leaderboarddomain.Service
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	clock          clock.Clock
	catalog        *config.ShopCatalogHolder
	reputationSvc  reputationdomain.Service
	voteSvc        votedomain.Service
	streakSvc      streakdomain.Service
	shopSvc        shopdomain.Service
	leaderboardSvc leaderboarddomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		clock:          p.Clock,
		catalog:        p.Catalog,
		reputationSvc:  p.ReputationSvc,
		voteSvc:        p.VoteSvc,
		streakSvc:      p.StreakSvc,
		shopSvc:        p.ShopSvc,
		leaderboardSvc: p.LeaderboardSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/users", s.CreateUser)
	v1.GET("/users/:id/reputation", s.GetReputation)
	v1.GET("/users/:id/logs", s.GetReputationLogs)

	v1.POST("/targets", s.RegisterTarget)
	v1.GET("/targets/:type/:id", s.GetTarget)

	authed := v1.Group("", IdentityRequired())
	authed.POST("/votes", s.CastVote)
	authed.POST("/actions", s.ApplyAction)
	authed.POST("/logins", s.RecordLogin)
	authed.POST("/purchases", s.Purchase)
	authed.GET("/purchases", s.ListPurchases)

	v1.GET("/shop/catalog", s.GetCatalog)
	v1.GET("/leaderboard", s.GetLeaderboard)
}

// identityKey carries the caller identity resolved by IdentityRequired.
const identityKey = "kudos.user_id"

// IdentityRequired resolves the stable user ID supplied by the upstream
// identity provider. Session mechanics live outside this service.
func IdentityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"type": "unauthorized", "message": "missing or invalid X-User-ID"},
			})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func currentUserID(c *gin.Context) snowflake.ID {
	v, ok := c.Get(identityKey)
	if !ok {
		return 0
	}
	id, _ := v.(snowflake.ID)
	return id
}
