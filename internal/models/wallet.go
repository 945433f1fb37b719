package models

import "time"

// Wallet holds the authoritative token balance of one user. It is mutated only by the ledger.
type Wallet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;uniqueIndex;not null" json:"user_id"`
	Balance   int64     `gorm:"not null;default:0;check:chk_wallets_balance,balance >= 0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}
