package models

import "time"

// Payment mirrors a checkout created with the processor. The processor stays authoritative:
// verification re-reads its record and never trusts this row.
type Payment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"size:64;not null;index" json:"user_id"`
	Provider    string     `gorm:"size:50;not null" json:"provider"`
	ProviderRef string     `gorm:"size:255;uniqueIndex;not null" json:"provider_ref"`
	TokenAmount int64      `gorm:"not null" json:"token_amount"`
	AmountCents int64      `gorm:"not null" json:"amount_cents"`
	Currency    string     `gorm:"size:3;not null" json:"currency"`
	Status      string     `gorm:"size:20;not null;index" json:"status"` // created, paid, failed, expired
	CheckoutURL string     `gorm:"size:1024" json:"checkout_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
