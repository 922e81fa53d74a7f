package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nureesan1/taawoon-sub000/internal/billing"
	"github.com/nureesan1/taawoon-sub000/internal/models"
	"github.com/nureesan1/taawoon-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PaymentHandler records and reverses member payments through the billing
// engine.
type PaymentHandler struct {
	DB     *gorm.DB
	Engine *billing.Engine
}

func NewPaymentHandler(db *gorm.DB, engine *billing.Engine) *PaymentHandler {
	return &PaymentHandler{DB: db, Engine: engine}
}

type createPaymentReq struct {
	PaidAt      string `json:"paid_at"` // YYYY-MM-DD, defaults to today
	Housing     string `json:"housing"`
	Land        string `json:"land"`
	GeneralLoan string `json:"general_loan"`
	Shares      string `json:"shares"`
	Savings     string `json:"savings"`
	Welfare     string `json:"welfare"`
	Insurance   string `json:"insurance"`
	Donation    string `json:"donation"`
	Method      string `json:"method" binding:"required,oneof=cash transfer"`
	RecordedBy  string `json:"recorded_by" binding:"max=64"`
}

type paymentResp struct {
	ID       string `json:"id"`
	MemberID uint   `json:"member_id"`
	PaidAt   string `json:"paid_at"`

	Housing     int64 `json:"housing_satang"`
	Land        int64 `json:"land_satang"`
	GeneralLoan int64 `json:"general_loan_satang"`
	Shares      int64 `json:"shares_satang"`
	Savings     int64 `json:"savings_satang"`
	Welfare     int64 `json:"welfare_satang"`
	Insurance   int64 `json:"insurance_satang"`
	Donation    int64 `json:"donation_satang"`

	Total      int64     `json:"total_satang"`
	TotalBaht  string    `json:"total"`
	Method     string    `json:"method"`
	RecordedBy string    `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func toPaymentResp(p *models.Payment) paymentResp {
	return paymentResp{
		ID:       p.ID,
		MemberID: p.MemberID,
		PaidAt:   p.PaidAt.Format("2006-01-02"),

		Housing:     p.Housing,
		Land:        p.Land,
		GeneralLoan: p.GeneralLoan,
		Shares:      p.Shares,
		Savings:     p.Savings,
		Welfare:     p.Welfare,
		Insurance:   p.Insurance,
		Donation:    p.Donation,

		Total:      p.Total,
		TotalBaht:  util.FormatSatang(p.Total),
		Method:     p.Method,
		RecordedBy: p.RecordedBy,
		CreatedAt:  p.CreatedAt,
	}
}

// CreatePayment records a payment for a member and applies its effect to
// the member's balances atomically.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	memberID, err := strconv.Atoi(c.Param("id"))
	if err != nil || memberID <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req createPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	p := models.Payment{
		MemberID:   uint(memberID),
		Method:     req.Method,
		RecordedBy: req.RecordedBy,
	}
	if req.PaidAt != "" {
		paidAt, ok := parseDateParam(c, req.PaidAt, "paid_at")
		if !ok {
			return
		}
		p.PaidAt = paidAt
	}

	amounts := []struct {
		name string
		in   string
		dst  *int64
	}{
		{"housing", req.Housing, &p.Housing},
		{"land", req.Land, &p.Land},
		{"general_loan", req.GeneralLoan, &p.GeneralLoan},
		{"shares", req.Shares, &p.Shares},
		{"savings", req.Savings, &p.Savings},
		{"welfare", req.Welfare, &p.Welfare},
		{"insurance", req.Insurance, &p.Insurance},
		{"donation", req.Donation, &p.Donation},
	}
	for _, a := range amounts {
		v, err := util.ParseBaht(a.in)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount for "+a.name)
			return
		}
		*a.dst = v
	}

	err = h.Engine.ApplyPayment(&p)
	switch {
	case errors.Is(err, billing.ErrMemberNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "member not found")
		return
	case errors.Is(err, billing.ErrZeroTotal), errors.Is(err, billing.ErrNegativeAmount):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	case err != nil:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to record payment")
		return
	}

	util.Success(c, util.Response{
		"payment": toPaymentResp(&p),
	})
}

// DeletePayment reverses a recorded payment. Deleting a payment that does
// not exist is reported as success with reversed=false.
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	memberID, err := strconv.Atoi(c.Param("id"))
	if err != nil || memberID <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}
	paymentID := c.Param("paymentID")
	if paymentID == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid payment id")
		return
	}

	reversed, err := h.Engine.ReversePayment(paymentID, uint(memberID))
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to reverse payment")
		return
	}

	util.Success(c, util.Response{
		"reversed": reversed,
	})
}

// ListPayments returns a member's payments, most recent first.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	memberID, err := strconv.Atoi(c.Param("id"))
	if err != nil || memberID <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var payments []models.Payment
	if err := h.DB.Where("member_id = ?", memberID).
		Order("paid_at DESC, created_at DESC").
		Find(&payments).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]paymentResp, 0, len(payments))
	for i := range payments {
		items = append(items, toPaymentResp(&payments[i]))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}
