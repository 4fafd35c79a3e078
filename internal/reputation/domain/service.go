package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ApplyActionRequest struct {
	UserID    snowflake.ID
	Action    Action
	SubjectID string
}

type ApplyActionResult struct {
	KarmaDelta  int64          `json:"karma_delta"`
	RewardDelta int64          `json:"reward_delta"`
	Reputation  UserReputation `json:"reputation"`
}

type Service interface {
	// EnsureUser creates the zeroed reputation row if absent.
	EnsureUser(ctx context.Context, userID snowflake.ID) (UserReputation, error)
	Get(ctx context.Context, userID snowflake.ID) (UserReputation, error)
	// ApplyAction awards a reportable action exactly once per
	// (user, action, subject) and returns the applied deltas.
	ApplyAction(ctx context.Context, req ApplyActionRequest) (ApplyActionResult, error)
	Logs(ctx context.Context, userID snowflake.ID, limit int) ([]ReputationLog, error)

	// AdjustTx applies a balance delta inside the caller's transaction,
	// locking the user row, clamping balances at zero and recomputing the
	// rank tier in the same write. Used by the vote service so counter and
	// karma updates commit as one unit.
	AdjustTx(ctx context.Context, tx *gorm.DB, userID snowflake.ID, karmaDelta, rewardDelta int64, action Action) (UserReputation, error)
}

var (
	ErrNotFound        = errors.New("not_found")
	ErrUnknownAction   = errors.New("unknown_action")
	ErrDuplicateAction = errors.New("duplicate_action")
	ErrInvalidSubject  = errors.New("invalid_subject")
	ErrInvalidUser     = errors.New("invalid_user")
)
