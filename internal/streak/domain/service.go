package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type RecordLoginResult struct {
	Streak      int       `json:"streak"`
	LastLoginAt time.Time `json:"last_login_at"`
}

type Service interface {
	// RecordLogin advances the user's consecutive-day login streak based
	// on the calendar gap since the previous login. Same-day repeats are
	// no-ops on the streak; a clock that runs backwards is rejected.
	RecordLogin(ctx context.Context, userID snowflake.ID, now time.Time) (RecordLoginResult, error)
}

var (
	ErrClockSkew   = errors.New("clock_skew")
	ErrInvalidUser = errors.New("invalid_user")
)
