package models

import (
	"time"

	"academy/internal/domain"
)

// LedgerEntry is an immutable record of one balance change. Amount is positive for credits and
// negative for debits. (kind, external_reference) is unique, which makes purchase credits
// at-most-once per processor payment; NULL references never collide.
type LedgerEntry struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	UserID            string           `gorm:"size:64;not null;index" json:"user_id"`
	Amount            int64            `gorm:"not null" json:"amount"`
	Kind              domain.EntryKind `gorm:"size:32;not null;uniqueIndex:idx_ledger_kind_ref,priority:1" json:"kind"`
	ExternalReference *string          `gorm:"size:255;uniqueIndex:idx_ledger_kind_ref,priority:2" json:"external_reference,omitempty"`
	ActorID           *string          `gorm:"size:64;index" json:"actor_id,omitempty"`
	BalanceAfter      int64            `gorm:"not null" json:"balance_after"`
	Memo              string           `gorm:"size:255" json:"memo,omitempty"`
	CreatedAt         time.Time        `gorm:"index" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
