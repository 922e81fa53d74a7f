package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nureesan1/taawoon-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerCategoryMemberPayment is the category of ledger entries mirrored
// from member payments.
const LedgerCategoryMemberPayment = "member payment received"

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrZeroTotal      = errors.New("payment total must be greater than zero")
	ErrNegativeAmount = errors.New("category amounts must not be negative")
	ErrUnknownField   = errors.New("unknown balance field")
)

// Engine applies and reverses the financial effect of payments on member
// balances. Every operation runs inside one storage transaction, which is
// the read-modify-write isolation unit for a member document: either all
// effects land or none do.
type Engine struct {
	DB *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db}
}

// ApplyPayment records p and applies its effect to the owning member:
// shares and savings accumulate, debt balances decrease clamped at zero,
// and one mirrored income ledger entry is created for society-level
// bookkeeping. The payment total is recomputed from the category amounts,
// never trusted from input.
func (e *Engine) ApplyPayment(p *models.Payment) error {
	for _, v := range []int64{p.Housing, p.Land, p.GeneralLoan, p.Shares,
		p.Savings, p.Welfare, p.Insurance, p.Donation} {
		if v < 0 {
			return ErrNegativeAmount
		}
	}
	p.Total = p.CategorySum()
	if p.Total <= 0 {
		return ErrZeroTotal
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}

	return e.DB.Transaction(func(tx *gorm.DB) error {
		var m models.Member
		if err := tx.First(&m, p.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		if err := tx.Create(p).Error; err != nil {
			return err
		}

		m.Shares += p.Shares
		m.Savings += p.Savings
		m.HousingDebt = clampZero(m.HousingDebt - p.Housing)
		m.LandDebt = clampZero(m.LandDebt - p.Land)
		m.GeneralDebt = clampZero(m.GeneralDebt - p.GeneralLoan)
		if err := tx.Save(&m).Error; err != nil {
			return err
		}

		mirror := models.LedgerEntry{
			ID:              uuid.NewString(),
			EntryDate:       p.PaidAt,
			Type:            models.LedgerIncome,
			Category:        LedgerCategoryMemberPayment,
			Description:     "Payment from member " + m.MemberCode,
			Amount:          p.Total,
			Method:          p.Method,
			RecordedBy:      p.RecordedBy,
			SourcePaymentID: &p.ID,
		}
		return tx.Create(&mirror).Error
	})
}

// ReversePayment removes a recorded payment and restores the member's
// balances to their exact pre-payment values: debt amounts are added back
// without clamping, shares and savings are subtracted, and the mirrored
// ledger entry is deleted.
//
// A missing member or payment is reported as (false, nil) rather than an
// error; the caller decides how to surface that.
func (e *Engine) ReversePayment(paymentID string, memberID uint) (bool, error) {
	reversed := false
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var m models.Member
		if err := tx.First(&m, memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var p models.Payment
		if err := tx.Where("id = ? AND member_id = ?", paymentID, memberID).
			First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Delete(&p).Error; err != nil {
			return err
		}

		m.Shares -= p.Shares
		m.Savings -= p.Savings
		m.HousingDebt += p.Housing
		m.LandDebt += p.Land
		m.GeneralDebt += p.GeneralLoan
		if err := tx.Save(&m).Error; err != nil {
			return err
		}

		if err := tx.Where("source_payment_id = ?", p.ID).
			Delete(&models.LedgerEntry{}).Error; err != nil {
			return err
		}
		reversed = true
		return nil
	})
	return reversed, err
}

// overridableFields maps request field names to member columns. Only
// balance and installment-plan fields may be overridden; identity and
// profile fields go through the normal member update.
var overridableFields = map[string]string{
	"housing_debt":        "housing_debt",
	"land_debt":           "land_debt",
	"general_debt":        "general_debt",
	"shares":              "shares",
	"savings":             "savings",
	"monthly_installment": "monthly_installment",
	"missed_installments": "missed_installments",
}

// OverrideBalances is the administrative data-correction path, distinct
// from payment-driven adjustment. It overwrites exactly the given fields
// and writes an audit record naming the actor and the changes, in the same
// transaction.
func (e *Engine) OverrideBalances(memberID uint, changes map[string]interface{}, staffID uint, actor string) error {
	if len(changes) == 0 {
		return nil
	}
	cols := make(map[string]interface{}, len(changes))
	for k, v := range changes {
		col, ok := overridableFields[k]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, k)
		}
		cols[col] = v
	}

	return e.DB.Transaction(func(tx *gorm.DB) error {
		var m models.Member
		if err := tx.First(&m, memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		if err := tx.Model(&m).Updates(cols).Error; err != nil {
			return err
		}

		meta, _ := json.Marshal(changes)
		audit := models.AuditLog{
			StaffID:  &staffID,
			MemberID: &m.ID,
			Action:   models.AuditBalanceOverride + " by " + actor,
			Metadata: string(meta),
		}
		return tx.Create(&audit).Error
	})
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
