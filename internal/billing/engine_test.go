package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/nureesan1/taawoon-sub000/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Member{},
		&models.Payment{},
		&models.LedgerEntry{},
		&models.AuditLog{},
	))
	return db
}

func seedMember(t *testing.T, db *gorm.DB) *models.Member {
	t.Helper()
	m := &models.Member{
		MemberCode:         "M-001",
		FirstName:          "Somchai",
		LastName:           "Jaidee",
		CitizenID:          "1234567890123",
		MemberType:         models.MemberTypeOrdinary,
		JoinDate:           time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		HousingDebt:        500000,
		LandDebt:           200000,
		GeneralDebt:        100000,
		Shares:             30000,
		Savings:            10000,
		MonthlyInstallment: 150000,
		MissedInstallments: 2,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestApplyPayment(t *testing.T) {
	db := setupDB(t)
	e := NewEngine(db)
	m := seedMember(t, db)

	p := &models.Payment{
		MemberID:    m.ID,
		Housing:     100000,
		Land:        50000,
		GeneralLoan: 20000,
		Shares:      5000,
		Savings:     3000,
		Welfare:     1000,
		Method:      models.MethodCash,
		RecordedBy:  "admin",
		Total:       999, // garbage, must be recomputed
	}
	require.NoError(t, e.ApplyPayment(p))
	require.NotEmpty(t, p.ID)
	require.Equal(t, int64(179000), p.Total)
	require.False(t, p.PaidAt.IsZero())

	var got models.Member
	require.NoError(t, db.First(&got, m.ID).Error)
	require.Equal(t, int64(400000), got.HousingDebt)
	require.Equal(t, int64(150000), got.LandDebt)
	require.Equal(t, int64(80000), got.GeneralDebt)
	require.Equal(t, int64(35000), got.Shares)
	require.Equal(t, int64(13000), got.Savings)

	var mirror models.LedgerEntry
	require.NoError(t, db.Where("source_payment_id = ?", p.ID).First(&mirror).Error)
	require.Equal(t, models.LedgerIncome, mirror.Type)
	require.Equal(t, LedgerCategoryMemberPayment, mirror.Category)
	require.Equal(t, int64(179000), mirror.Amount)
	require.Contains(t, mirror.Description, "M-001")
	require.True(t, mirror.IsMirror())
}

func TestApplyPaymentClampsDebtAtZero(t *testing.T) {
	db := setupDB(t)
	e := NewEngine(db)
	m := seedMember(t, db)
	m.HousingDebt = 20000
	require.NoError(t, db.Save(m).Error)

	p := &models.Payment{MemberID: m.ID, Housing: 50000, Method: models.MethodCash}
	require.NoError(t, e.ApplyPayment(p))

	var got models.Member
	require.NoError(t, db.First(&got, m.ID).Error)
	require.Equal(t, int64(0), got.HousingDebt)
}

func TestApplyPaymentUnknownMember(t *testing.T) {
	db := setupDB(t)
	e := NewEngine(db)

	p := &models.Payment{MemberID: 999, Housing: 10000, Method: models.MethodCash}
	err := e.ApplyPayment(p)
	require.ErrorIs(t, err, ErrMemberNotFound)

	// nothing persisted
	var n int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, db.Model(&models.LedgerEntry{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestApplyPaymentRejectsZeroAndNegative(t *testing.T) {
	db := setupDB(t)
	e := NewEngine(db)
	m := seedMember(t, db)

	err := e.ApplyPayment(&models.Payment{MemberID: m.ID, Method: models.MethodCash})
	require.ErrorIs(t, err, ErrZeroTotal)

	err = e.ApplyPayment(&models.Payment{MemberID: m.ID, Housing: -100, Method: models.MethodCash})
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestReversePaymentRestoresBalances(t *testing.T) {
	db := setupDB(t)
	e := NewEngine(db)
	m := seedMember(t, db)

	var before models.Member
	require.NoError(t, db.First(&before, m.ID).Error)

	p := &models.Payment{
		MemberID:    m.ID,
		Housing:     100000,
		Land:        50000,
		GeneralLoan: 20000,
		Shares:      5000,
		Savings:     3000,
		Method:      models.MethodTransfer,
	}
	require.NoError(t, e.ApplyPayment(p))

	reversed, err := e.ReversePayment(p.ID, m.ID)
	require.NoError(t, err)
	require.True(t, reversed)

	var after models.Member
	require.NoError(t, db.First(&after, m.ID).Error)
	require.Equal(t, before.HousingDebt, after.HousingDebt)
	require.Equal(t, before.LandDebt, after.LandDebt)
	require.Equal(t, before.GeneralDebt, after.GeneralDebt)
	require.Equal(t, before.Shares, after.Shares)
	require.Equal(t, before.Savings, after.Savings)

	var n int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, db.Model(&models.LedgerEntry{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestReversePaymentMissing(t *testing.T) {
	db := setupDB(t)
	e := NewEngine(db)
	m := seedMember(t, db)

	reversed, err := e.ReversePayment("no-such-payment", m.ID)
	require.NoError(t, err)
	require.False(t, reversed)

	reversed, err = e.ReversePayment("no-such-payment", 999)
	require.NoError(t, err)
	require.False(t, reversed)

	var got models.Member
	require.NoError(t, db.First(&got, m.ID).Error)
	require.Equal(t, int64(500000), got.HousingDebt)
}

func TestOverrideBalances(t *testing.T) {
	db := setupDB(t)
	e := NewEngine(db)
	m := seedMember(t, db)

	changes := map[string]interface{}{
		"housing_debt":        int64(250000),
		"missed_installments": 0,
	}
	require.NoError(t, e.OverrideBalances(m.ID, changes, 7, "admin"))

	var got models.Member
	require.NoError(t, db.First(&got, m.ID).Error)
	require.Equal(t, int64(250000), got.HousingDebt)
	require.Equal(t, 0, got.MissedInstallments)
	// untouched fields survive
	require.Equal(t, int64(200000), got.LandDebt)

	var audit models.AuditLog
	require.NoError(t, db.Where("member_id = ?", m.ID).First(&audit).Error)
	require.Contains(t, audit.Action, models.AuditBalanceOverride)
	require.Contains(t, audit.Action, "admin")
	require.Contains(t, audit.Metadata, "housing_debt")
	require.Equal(t, uint(7), *audit.StaffID)
}

func TestOverrideBalancesUnknownField(t *testing.T) {
	db := setupDB(t)
	e := NewEngine(db)
	m := seedMember(t, db)

	err := e.OverrideBalances(m.ID, map[string]interface{}{"first_name": "hax"}, 1, "admin")
	require.ErrorIs(t, err, ErrUnknownField)

	var got models.Member
	require.NoError(t, db.First(&got, m.ID).Error)
	require.Equal(t, "Somchai", got.FirstName)
}
