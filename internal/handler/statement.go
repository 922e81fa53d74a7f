package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nureesan1/taawoon-sub000/internal/billing"
	"github.com/nureesan1/taawoon-sub000/internal/models"
	"github.com/nureesan1/taawoon-sub000/internal/util"

	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatementHandler renders the yearly amortization statement for a member.
type StatementHandler struct {
	DB *gorm.DB
}

func NewStatementHandler(db *gorm.DB) *StatementHandler {
	return &StatementHandler{DB: db}
}

// GetStatement computes the 12-month schedule for ?year=YYYY (default:
// current year) from the member's installment plan and payment history.
func (h *StatementHandler) GetStatement(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	year := time.Now().Year()
	if y := c.Query("year"); y != "" {
		year, err = strconv.Atoi(y)
		if err != nil || year < 1900 || year > 9999 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid year")
			return
		}
	}

	var m models.Member
	if err := h.DB.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "member not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	var payments []models.Payment
	if err := h.DB.Where("member_id = ?", m.ID).Find(&payments).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	s := billing.BuildSchedule(m.MonthlyInstallment, m.MissedInstallments, payments, year)

	util.Success(c, util.Response{
		"member":           toMemberResp(&m),
		"statement":        s,
		"initial_debt":     util.FormatSatang(s.InitialDebt),
		"final_balance":    util.FormatSatang(s.FinalBalance),
		"total_paid":       util.FormatSatang(s.TotalPaid),
		"total_paid_words": amountWords(s.TotalPaid),
	})
}

// amountWords spells out a satang amount for the printed statement,
// e.g. 1450050 -> "fourteen thousand five hundred baht fifty satang".
func amountWords(v int64) string {
	baht := v / 100
	satang := v % 100
	words := num2words.Convert(int(baht)) + " baht"
	if satang > 0 {
		words += " " + num2words.Convert(int(satang)) + " satang"
	}
	return words
}
