package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type PurchaseRequest struct {
	UserID snowflake.ID
	ItemID string
}

type PurchaseResult struct {
	PurchaseID snowflake.ID `json:"purchase_id"`
	ItemID     string       `json:"item_id"`
	Cost       int64        `json:"cost"`
	NewBalance int64        `json:"new_balance"`
}

type Service interface {
	// Purchase debits reward points and appends the purchase record as
	// one atomic unit; a failed check never leaves a partial debit.
	Purchase(ctx context.Context, req PurchaseRequest) (PurchaseResult, error)
	ListPurchases(ctx context.Context, userID snowflake.ID) ([]Purchase, error)
}

var (
	ErrItemNotFound        = errors.New("item_not_found")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrLimitReached        = errors.New("limit_reached")
	ErrInvalidUser         = errors.New("invalid_user")
)
