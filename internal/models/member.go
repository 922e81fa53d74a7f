package models

import "time"

// Member types. The numeric codes appear in the bulk import format.
const (
	MemberTypeOrdinary  = "ordinary"
	MemberTypeAssociate = "associate"
)

// Member represents a cooperative member with tracked debt and savings
// balances. All monetary fields are stored in satang to avoid float error,
// e.g. 12.50 baht = 1250 satang.
type Member struct {
	ID         uint      `gorm:"primaryKey"`
	MemberCode string    `gorm:"size:16;uniqueIndex;not null"` // e.g. M-042, sequential
	FirstName  string    `gorm:"size:64;not null"`
	LastName   string    `gorm:"size:64;not null"`
	CitizenID  string    `gorm:"size:13;index"` // 13-digit national id
	Phone      string    `gorm:"size:32"`
	Address    string    `gorm:"size:255"`
	MemberType string    `gorm:"size:16;index;not null"` // ordinary / associate
	JoinDate   time.Time `gorm:"index"`

	// Debt balances, maintained incrementally by the billing engine.
	// Never allowed below zero.
	HousingDebt int64 `gorm:"not null;default:0"`
	LandDebt    int64 `gorm:"not null;default:0"`
	GeneralDebt int64 `gorm:"not null;default:0"`

	// Asset balances, accumulated by payments.
	Shares  int64 `gorm:"not null;default:0"`
	Savings int64 `gorm:"not null;default:0"`

	// Installment plan: a fixed monthly obligation overlaid on the debt
	// balances, with a brought-forward missed-payment counter.
	MonthlyInstallment int64 `gorm:"not null;default:0"` // 0 = no scheduled debt
	MissedInstallments int   `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Payments []Payment `gorm:"constraint:OnDelete:CASCADE"`
}

// FullName joins first and last name for display and export.
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// MemberTypeLabel returns the display label for a member type value.
func MemberTypeLabel(t string) string {
	switch t {
	case MemberTypeOrdinary:
		return "Ordinary"
	case MemberTypeAssociate:
		return "Associate"
	}
	return t
}

// ValidMemberType reports whether t is a known member type.
func ValidMemberType(t string) bool {
	return t == MemberTypeOrdinary || t == MemberTypeAssociate
}
