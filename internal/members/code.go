package members

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nureesan1/taawoon-sub000/internal/models"

	"gorm.io/gorm"
)

const codePrefix = "M-"

// NextMemberCode returns the next sequential member code (M-001, M-002, ...).
// Ordering by length first keeps M-1000 above M-999, so auto-assigned codes
// stay monotonically increasing past three digits. Call inside the same
// transaction as the insert so two creations cannot claim the same code.
func NextMemberCode(db *gorm.DB) (string, error) {
	var last models.Member
	err := db.Select("member_code").
		Where("member_code LIKE ?", codePrefix+"%").
		Order("length(member_code) DESC, member_code DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Sprintf("%s%03d", codePrefix, 1), nil
	}
	if err != nil {
		return "", err
	}

	n, err := strconv.Atoi(strings.TrimPrefix(last.MemberCode, codePrefix))
	if err != nil {
		return "", fmt.Errorf("parse member code %q: %w", last.MemberCode, err)
	}
	return fmt.Sprintf("%s%03d", codePrefix, n+1), nil
}
