package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Purchase is an append-only record of a completed shop debit. Rows are
// never mutated; max_per_user enforcement counts them.
type Purchase struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index:idx_purchases_user_item,priority:1" json:"user_id"`
	ItemID    string       `gorm:"type:text;not null;index:idx_purchases_user_item,priority:2" json:"item_id"`
	Cost      int64        `gorm:"not null" json:"cost"`
	CreatedAt time.Time    `gorm:"not null" json:"purchased_at"`
}

// TableName sets the database table name.
func (Purchase) TableName() string { return "purchases" }
