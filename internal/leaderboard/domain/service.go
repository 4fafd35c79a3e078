package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	reputationdomain "github.com/smallbiznis/kudos/internal/reputation/domain"
)

// Metric selects which reputation currency orders the leaderboard.
type Metric string

const (
	MetricKarma        Metric = "karma"
	MetricRewardPoints Metric = "reward_points"
	MetricStreak       Metric = "streak"
)

func (m Metric) Valid() bool {
	return m == MetricKarma || m == MetricRewardPoints || m == MetricStreak
}

type Entry struct {
	Position int                   `json:"position"`
	UserID   snowflake.ID          `json:"user_id"`
	Value    int64                 `json:"value"`
	RankTier reputationdomain.Tier `json:"rank_tier"`
}

type Service interface {
	// Top returns users ordered by the chosen metric, highest first.
	// Ties break on ascending user ID so the ordering is deterministic.
	Top(ctx context.Context, metric Metric, limit int) ([]Entry, error)
}

var ErrInvalidMetric = errors.New("invalid_metric")
