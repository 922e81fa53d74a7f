package models

import "time"

// Audit actions written outside the request middleware.
const (
	AuditBalanceOverride = "balance override"
	AuditMemberDeleted   = "member deleted"
)

// AuditLog records important operations for auditing. Direct administrative
// balance overrides land here so they can be told apart from payment-driven
// adjustments, which live in the payment log itself.
type AuditLog struct {
	ID       uint   `gorm:"primaryKey"`
	StaffID  *uint  `gorm:"index"`
	MemberID *uint  `gorm:"index"`
	Method   string `gorm:"size:16"`
	Path     string `gorm:"size:255"`
	Action   string `gorm:"size:1024"`
	Metadata string `gorm:"size:2048"` // JSON of changed fields, request body excerpt
	IP       string `gorm:"size:64"`

	CreatedAt time.Time
}
