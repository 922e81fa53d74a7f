package models

import "time"

// Ledger entry types.
const (
	LedgerIncome  = "income"
	LedgerExpense = "expense"
)

// LedgerEntry is a cooperative-wide income or expense record, independent
// of any one member. Amount is satang.
//
// Entries mirrored from member payments carry SourcePaymentID and are
// created and removed only by the billing engine, in the same transaction
// as the member balance update.
type LedgerEntry struct {
	ID          string    `gorm:"primaryKey;size:36"` // UUID
	EntryDate   time.Time `gorm:"index;not null"`
	Type        string    `gorm:"size:16;index;not null"` // income / expense
	Category    string    `gorm:"size:64;not null"`
	Description string    `gorm:"size:255"`
	Amount      int64     `gorm:"not null"`
	Method      string    `gorm:"size:16"`
	RecordedBy  string    `gorm:"size:64"`
	Note        string    `gorm:"size:255"`

	SourcePaymentID *string `gorm:"size:36;index"`

	CreatedAt time.Time
}

// IsMirror reports whether the entry mirrors a member payment.
func (l *LedgerEntry) IsMirror() bool {
	return l.SourcePaymentID != nil && *l.SourcePaymentID != ""
}
