package service

import (
	"time"

	"academy/internal/domain"
	"academy/internal/models"
)

// Publisher delivers a JSON-encodable event to every live connection of a user.
type Publisher interface {
	BroadcastToUser(userID string, payload interface{})
}

// BalanceEvent is pushed to clients after a ledger entry commits.
type BalanceEvent struct {
	Type      string           `json:"type"`
	Balance   int64            `json:"balance"`
	Delta     int64            `json:"delta"`
	Kind      domain.EntryKind `json:"kind"`
	Reference string           `json:"reference,omitempty"`
	At        time.Time        `json:"at"`
}

const EventBalanceChanged = "BALANCE_CHANGED"

type NotificationService struct {
	pub Publisher
}

// NewNotificationService accepts a nil publisher; notifications are then dropped.
func NewNotificationService(pub Publisher) *NotificationService {
	return &NotificationService{pub: pub}
}

// LedgerEntryApplied tells the wallet owner about a committed entry. Safe on a nil receiver.
func (s *NotificationService) LedgerEntryApplied(entry *models.LedgerEntry) {
	if s == nil || s.pub == nil || entry == nil {
		return
	}
	evt := BalanceEvent{
		Type:    EventBalanceChanged,
		Balance: entry.BalanceAfter,
		Delta:   entry.Amount,
		Kind:    entry.Kind,
		At:      entry.CreatedAt,
	}
	if entry.ExternalReference != nil {
		evt.Reference = *entry.ExternalReference
	}
	s.pub.BroadcastToUser(entry.UserID, evt)
}
