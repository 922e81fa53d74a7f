package models

import "time"

// Payment methods.
const (
	MethodCash     = "cash"
	MethodTransfer = "transfer"
)

// Payment is one recorded payment event, allocated across debt, savings and
// fee categories. Amounts are satang. A payment is immutable once recorded;
// the only mutation is deletion, which reverses its effect on the member.
type Payment struct {
	ID       string    `gorm:"primaryKey;size:36"` // UUID
	MemberID uint      `gorm:"index;not null"`
	PaidAt   time.Time `gorm:"index;not null"` // payment date, distinct from CreatedAt

	Housing     int64 `gorm:"not null;default:0"`
	Land        int64 `gorm:"not null;default:0"`
	GeneralLoan int64 `gorm:"not null;default:0"`
	Shares      int64 `gorm:"not null;default:0"`
	Savings     int64 `gorm:"not null;default:0"`
	Welfare     int64 `gorm:"not null;default:0"`
	Insurance   int64 `gorm:"not null;default:0"`
	Donation    int64 `gorm:"not null;default:0"`

	// Total is always recomputed as the sum of the category fields,
	// never trusted from input.
	Total      int64  `gorm:"not null"`
	Method     string `gorm:"size:16;not null"` // cash / transfer
	RecordedBy string `gorm:"size:64"`

	CreatedAt time.Time // audit ordering
}

// CategorySum returns the sum of all category amounts.
func (p *Payment) CategorySum() int64 {
	return p.Housing + p.Land + p.GeneralLoan + p.Shares +
		p.Savings + p.Welfare + p.Insurance + p.Donation
}

// DebtService returns the portion of the payment that counts toward
// installment payoff: housing + land + general loan.
func (p *Payment) DebtService() int64 {
	return p.Housing + p.Land + p.GeneralLoan
}

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m string) bool {
	return m == MethodCash || m == MethodTransfer
}
