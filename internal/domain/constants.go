package domain

const (
	RoleStudent = "STUDENT"
	RoleAdmin   = "ADMIN"
)

// EntryKind is the business reason recorded on a ledger entry.
type EntryKind string

const (
	KindAdminGrant      EntryKind = "admin_grant"
	KindPurchaseCredit  EntryKind = "purchase_credit"
	KindEnrollmentDebit EntryKind = "enrollment_debit"
)

func (k EntryKind) Valid() bool {
	switch k {
	case KindAdminGrant, KindPurchaseCredit, KindEnrollmentDebit:
		return true
	}
	return false
}

// Payment statuses, as reported by the processor and mirrored locally.
const (
	PaymentStatusCreated = "created"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
	PaymentStatusExpired = "expired"
)

// Keys of the opaque metadata attached to a checkout and read back during verification.
const (
	MetadataUserID = "user_id"
	MetadataTokens = "tokens"
)

const (
	MinProgress = 0
	MaxProgress = 100
)
