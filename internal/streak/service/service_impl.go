package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	obsmetrics "github.com/smallbiznis/kudos/internal/observability/metrics"
	reputationdomain "github.com/smallbiznis/kudos/internal/reputation/domain"
	"github.com/smallbiznis/kudos/internal/streak/domain"
	kdb "github.com/smallbiznis/kudos/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("streak.service"),
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) RecordLogin(ctx context.Context, userID snowflake.ID, now time.Time) (domain.RecordLoginResult, error) {
	if userID == 0 {
		return domain.RecordLoginResult{}, domain.ErrInvalidUser
	}
	now = now.UTC()

	var result domain.RecordLoginResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec reputationdomain.UserReputation
		err := tx.WithContext(ctx).Raw(
			kdb.ForUpdate(tx,
				`SELECT user_id, karma_points, reward_points, rank_tier, learning_streak,
				        last_login_at, created_at, updated_at
				 FROM user_reputations WHERE user_id = ?`),
			userID,
		).Scan(&rec).Error
		if err != nil {
			return err
		}
		if rec.UserID == 0 {
			return reputationdomain.ErrNotFound
		}

		streak := 1
		if rec.LastLoginAt != nil {
			if now.Before(*rec.LastLoginAt) {
				s.log.Warn("login event predates last recorded login",
					zap.String("user_id", userID.String()),
					zap.Time("last_login_at", *rec.LastLoginAt),
					zap.Time("now", now),
				)
				return domain.ErrClockSkew
			}
			switch days := calendarDayDelta(*rec.LastLoginAt, now); {
			case days == 0:
				streak = rec.LearningStreak
			case days == 1:
				streak = rec.LearningStreak + 1
			default:
				streak = 1
			}
		}

		if err := tx.WithContext(ctx).Exec(
			`UPDATE user_reputations
			 SET learning_streak = ?, last_login_at = ?, updated_at = ?
			 WHERE user_id = ?`,
			streak,
			now,
			now,
			userID,
		).Error; err != nil {
			return err
		}

		result = domain.RecordLoginResult{Streak: streak, LastLoginAt: now}
		return nil
	})
	if err != nil {
		if err == domain.ErrClockSkew {
			s.obsMetrics.RecordRejection("clock_skew")
		}
		return domain.RecordLoginResult{}, err
	}

	s.obsMetrics.RecordLogin()
	return result, nil
}

// calendarDayDelta counts whole calendar days between two instants in UTC.
// Dividing elapsed seconds by 86400 would misclassify logins that straddle
// midnight, so both instants are truncated to their calendar date first.
func calendarDayDelta(from, to time.Time) int {
	from = from.UTC()
	to = to.UTC()
	fromDate := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDate := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDate.Sub(fromDate) / (24 * time.Hour))
}
