package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UserReputation is the per-user ledger row. Karma and reward balances are
// mutated only inside transactions that also recompute the rank tier, so a
// persisted tier can never be observed out of sync with karma.
type UserReputation struct {
	UserID         snowflake.ID `gorm:"primaryKey" json:"user_id"`
	KarmaPoints    int64        `gorm:"not null;default:0" json:"karma_points"`
	RewardPoints   int64        `gorm:"not null;default:0" json:"reward_points"`
	RankTier       Tier         `gorm:"type:text;not null" json:"rank_tier"`
	LearningStreak int          `gorm:"not null;default:0" json:"learning_streak"`
	LastLoginAt    *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (UserReputation) TableName() string { return "user_reputations" }

// ActionCompletion marks one logical event as already rewarded. The unique
// (user_id, action, subject_id) index is what makes ApplyAction idempotent.
type ActionCompletion struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    snowflake.ID `gorm:"not null;uniqueIndex:ux_action_completions,priority:1"`
	Action    Action       `gorm:"type:text;not null;uniqueIndex:ux_action_completions,priority:2"`
	SubjectID string       `gorm:"type:text;not null;uniqueIndex:ux_action_completions,priority:3"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ActionCompletion) TableName() string { return "action_completions" }

// ReputationLog is an append-only record of every balance mutation, with the
// resulting balances captured for audit reconstruction.
type ReputationLog struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID `gorm:"not null;index" json:"user_id"`
	Action      Action       `gorm:"type:text;not null" json:"action"`
	KarmaDelta  int64        `gorm:"not null" json:"karma_delta"`
	RewardDelta int64        `gorm:"not null" json:"reward_delta"`
	KarmaAfter  int64        `gorm:"not null" json:"karma_after"`
	RewardAfter int64        `gorm:"not null" json:"reward_after"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (ReputationLog) TableName() string { return "reputation_logs" }
