package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TargetType identifies the kind of votable content.
type TargetType string

const (
	TargetTypePost    TargetType = "post"
	TargetTypeComment TargetType = "comment"
)

func (t TargetType) Valid() bool {
	return t == TargetTypePost || t == TargetTypeComment
}

// VoteState is one voter's relationship to one target.
type VoteState string

const (
	VoteStateNone      VoteState = "none"
	VoteStateUpvoted   VoteState = "upvoted"
	VoteStateDownvoted VoteState = "downvoted"
)

func (s VoteState) Valid() bool {
	return s == VoteStateNone || s == VoteStateUpvoted || s == VoteStateDownvoted
}

// Target is a votable piece of content. The counters are a materialized view
// of the votes table and are only ever written in the same transaction as
// the vote row they reflect.
type Target struct {
	TargetType    TargetType   `gorm:"type:text;primaryKey" json:"target_type"`
	TargetID      snowflake.ID `gorm:"primaryKey" json:"target_id"`
	OwnerID       snowflake.ID `gorm:"not null;index" json:"owner_id"`
	UpvoteCount   int64        `gorm:"not null;default:0" json:"upvote_count"`
	DownvoteCount int64        `gorm:"not null;default:0" json:"downvote_count"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Target) TableName() string { return "targets" }

// Vote is the unit of truth: at most one row per (voter, target).
type Vote struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	VoterID    snowflake.ID `gorm:"not null;uniqueIndex:ux_votes_voter_target,priority:1" json:"voter_id"`
	TargetType TargetType   `gorm:"type:text;not null;uniqueIndex:ux_votes_voter_target,priority:2" json:"target_type"`
	TargetID   snowflake.ID `gorm:"not null;uniqueIndex:ux_votes_voter_target,priority:3;index" json:"target_id"`
	VoteState  VoteState    `gorm:"type:text;not null" json:"vote_state"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Vote) TableName() string { return "votes" }
