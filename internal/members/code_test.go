package members

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
	require.NoError(t, db.AutoMigrate(&models.Member{}))
	return db
}

func addMember(t *testing.T, db *gorm.DB, code string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Member{
		MemberCode: code,
		FirstName:  "A",
		LastName:   "B",
		CitizenID:  "1234567890123",
		MemberType: models.MemberTypeOrdinary,
		JoinDate:   time.Now(),
	}).Error)
}

func TestNextMemberCode(t *testing.T) {
	db := setupDB(t)

	code, err := NextMemberCode(db)
	require.NoError(t, err)
	require.Equal(t, "M-001", code)

	addMember(t, db, "M-001")
	addMember(t, db, "M-009")

	code, err = NextMemberCode(db)
	require.NoError(t, err)
	require.Equal(t, "M-010", code)
}

func TestNextMemberCodePastThreeDigits(t *testing.T) {
	db := setupDB(t)

	addMember(t, db, "M-999")
	code, err := NextMemberCode(db)
	require.NoError(t, err)
	require.Equal(t, "M-1000", code)

	addMember(t, db, "M-1000")
	code, err = NextMemberCode(db)
	require.NoError(t, err)
	require.Equal(t, "M-1001", code)
}
