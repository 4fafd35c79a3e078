package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type RegisterTargetRequest struct {
	TargetType TargetType
	TargetID   snowflake.ID
	OwnerID    snowflake.ID
}

type CastVoteRequest struct {
	VoterID    snowflake.ID
	TargetType TargetType
	TargetID   snowflake.ID
	Desired    VoteState
}

// CounterDeltas is the signed change this call applied to the target's
// counters, for caller-side UI updates.
type CounterDeltas struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

type CastVoteResult struct {
	State         VoteState     `json:"state"`
	Deltas        CounterDeltas `json:"counter_deltas"`
	UpvoteCount   int64         `json:"upvote_count"`
	DownvoteCount int64         `json:"downvote_count"`
}

type Service interface {
	// RegisterTarget makes content votable. Idempotent; it also ensures
	// the owner has a reputation row so upvote karma has somewhere to go.
	RegisterTarget(ctx context.Context, req RegisterTargetRequest) (Target, error)
	GetTarget(ctx context.Context, targetType TargetType, targetID snowflake.ID) (Target, error)
	// CastVote drives the none/upvoted/downvoted state machine. The vote
	// row, both counters and the owner's karma commit as one transaction.
	CastVote(ctx context.Context, req CastVoteRequest) (CastVoteResult, error)
}

var (
	ErrTargetNotFound   = errors.New("target_not_found")
	ErrInvalidTarget    = errors.New("invalid_target")
	ErrInvalidVoter     = errors.New("invalid_voter")
	ErrInvalidVoteState = errors.New("invalid_vote_state")
	ErrInvalidOwner     = errors.New("invalid_owner")
)
