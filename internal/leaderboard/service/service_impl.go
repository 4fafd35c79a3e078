package service

import (
	"context"

	"github.com/smallbiznis/kudos/internal/leaderboard/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultLimit = 20
const maxLimit = 100

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("leaderboard.service"),
	}
}

func (s *Service) Top(ctx context.Context, metric domain.Metric, limit int) ([]domain.Entry, error) {
	column, ok := metricColumn(metric)
	if !ok {
		return nil, domain.ErrInvalidMetric
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var entries []domain.Entry
	err := s.db.WithContext(ctx).Raw(
		`SELECT user_id, `+column+` AS value, rank_tier
		 FROM user_reputations
		 ORDER BY `+column+` DESC, user_id ASC
		 LIMIT ?`,
		limit,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries, nil
}

// metricColumn whitelists the sortable columns; the metric never reaches
// the SQL string unvalidated.
func metricColumn(metric domain.Metric) (string, bool) {
	switch metric {
	case domain.MetricKarma:
		return "karma_points", true
	case domain.MetricRewardPoints:
		return "reward_points", true
	case domain.MetricStreak:
		return "learning_streak", true
	default:
		return "", false
	}
}
