package models

import "time"

// Staff roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Staff represents an office user who records payments and manages members.
type Staff struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:64"`
	Role         string `gorm:"size:16;not null;default:staff"` // admin / staff
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the staff account holds the admin role.
func (s *Staff) IsAdmin() bool {
	return s.Role == RoleAdmin
}
