package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nureesan1/taawoon-sub000/internal/billing"
	"github.com/nureesan1/taawoon-sub000/internal/members"
	"github.com/nureesan1/taawoon-sub000/internal/models"
	"github.com/nureesan1/taawoon-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MemberHandler serves member registration, lookup and balance management.
type MemberHandler struct {
	DB       *gorm.DB
	Engine   *billing.Engine
	PageSize int
}

func NewMemberHandler(db *gorm.DB, engine *billing.Engine, pageSize int) *MemberHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &MemberHandler{DB: db, Engine: engine, PageSize: pageSize}
}

// ---------- request/response structs ----------

type createMemberReq struct {
	FirstName          string `json:"first_name" binding:"required,max=64"`
	LastName           string `json:"last_name" binding:"required,max=64"`
	CitizenID          string `json:"citizen_id" binding:"required"`
	Phone              string `json:"phone" binding:"max=32"`
	Address            string `json:"address" binding:"max=255"`
	MemberType         string `json:"member_type" binding:"required,oneof=ordinary associate"`
	JoinDate           string `json:"join_date"`
	Shares             string `json:"shares"`
	Savings            string `json:"savings"`
	HousingDebt        string `json:"housing_debt"`
	LandDebt           string `json:"land_debt"`
	GeneralDebt        string `json:"general_debt"`
	MonthlyInstallment string `json:"monthly_installment"`
	MissedInstallments int    `json:"missed_installments" binding:"gte=0"`
}

type updateMemberReq struct {
	FirstName  string `json:"first_name" binding:"required,max=64"`
	LastName   string `json:"last_name" binding:"required,max=64"`
	CitizenID  string `json:"citizen_id" binding:"required"`
	Phone      string `json:"phone" binding:"max=32"`
	Address    string `json:"address" binding:"max=255"`
	MemberType string `json:"member_type" binding:"required,oneof=ordinary associate"`
	JoinDate   string `json:"join_date"`
}

// overrideBalancesReq uses pointers so that omitted fields stay untouched:
// the override writes exactly the fields the admin sent.
type overrideBalancesReq struct {
	HousingDebt        *string `json:"housing_debt"`
	LandDebt           *string `json:"land_debt"`
	GeneralDebt        *string `json:"general_debt"`
	Shares             *string `json:"shares"`
	Savings            *string `json:"savings"`
	MonthlyInstallment *string `json:"monthly_installment"`
	MissedInstallments *int    `json:"missed_installments"`
}

type memberResp struct {
	ID         uint   `json:"id"`
	MemberCode string `json:"member_code"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	CitizenID  string `json:"citizen_id"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	MemberType string `json:"member_type"`
	TypeLabel  string `json:"member_type_label"`
	JoinDate   string `json:"join_date"`

	HousingDebt     int64  `json:"housing_debt_satang"`
	HousingDebtBaht string `json:"housing_debt"`
	LandDebt        int64  `json:"land_debt_satang"`
	LandDebtBaht    string `json:"land_debt"`
	GeneralDebt     int64  `json:"general_debt_satang"`
	GeneralDebtBaht string `json:"general_debt"`
	Shares          int64  `json:"shares_satang"`
	SharesBaht      string `json:"shares"`
	Savings         int64  `json:"savings_satang"`
	SavingsBaht     string `json:"savings"`

	MonthlyInstallment     int64  `json:"monthly_installment_satang"`
	MonthlyInstallmentBaht string `json:"monthly_installment"`
	MissedInstallments     int    `json:"missed_installments"`
}

func toMemberResp(m *models.Member) memberResp {
	joinDate := ""
	if !m.JoinDate.IsZero() {
		joinDate = m.JoinDate.Format("2006-01-02")
	}
	return memberResp{
		ID:         m.ID,
		MemberCode: m.MemberCode,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		CitizenID:  m.CitizenID,
		Phone:      m.Phone,
		Address:    m.Address,
		MemberType: m.MemberType,
		TypeLabel:  models.MemberTypeLabel(m.MemberType),
		JoinDate:   joinDate,

		HousingDebt:     m.HousingDebt,
		HousingDebtBaht: util.FormatSatang(m.HousingDebt),
		LandDebt:        m.LandDebt,
		LandDebtBaht:    util.FormatSatang(m.LandDebt),
		GeneralDebt:     m.GeneralDebt,
		GeneralDebtBaht: util.FormatSatang(m.GeneralDebt),
		Shares:          m.Shares,
		SharesBaht:      util.FormatSatang(m.Shares),
		Savings:         m.Savings,
		SavingsBaht:     util.FormatSatang(m.Savings),

		MonthlyInstallment:     m.MonthlyInstallment,
		MonthlyInstallmentBaht: util.FormatSatang(m.MonthlyInstallment),
		MissedInstallments:     m.MissedInstallments,
	}
}

// ---------- handlers ----------

// ListMembers returns a paginated member list, optionally filtered by a
// free-text search over code and name.
func (h *MemberHandler) ListMembers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.PageSize)))
	if size <= 0 || size > 100 {
		size = h.PageSize
	}
	offset := (page - 1) * size

	base := h.DB.Model(&models.Member{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + q + "%"
		base = base.Where("member_code LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var list []models.Member
	if err := base.Session(&gorm.Session{}).
		Order("length(member_code) ASC, member_code ASC").
		Limit(size).
		Offset(offset).
		Find(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]memberResp, 0, len(list))
	for i := range list {
		items = append(items, toMemberResp(&list[i]))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// GetMember returns one member with payments sorted most recent first.
func (h *MemberHandler) GetMember(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
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
	if err := h.DB.Where("member_id = ?", m.ID).
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
		"member":   toMemberResp(&m),
		"payments": items,
	})
}

// CreateMember registers a new member. The member code is auto-assigned
// sequentially inside the insert transaction.
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req createMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	citizenID, ok := util.NormalizeCitizenID(req.CitizenID)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "citizen id must have exactly 13 digits")
		return
	}

	joinDate := time.Now()
	if req.JoinDate != "" {
		joinDate, ok = parseDateParam(c, req.JoinDate, "join_date")
		if !ok {
			return
		}
	}

	m := models.Member{
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		CitizenID:          citizenID,
		Phone:              strings.TrimSpace(req.Phone),
		Address:            strings.TrimSpace(req.Address),
		MemberType:         req.MemberType,
		JoinDate:           joinDate,
		MissedInstallments: req.MissedInstallments,
	}

	amounts := []struct {
		name string
		in   string
		dst  *int64
	}{
		{"shares", req.Shares, &m.Shares},
		{"savings", req.Savings, &m.Savings},
		{"housing_debt", req.HousingDebt, &m.HousingDebt},
		{"land_debt", req.LandDebt, &m.LandDebt},
		{"general_debt", req.GeneralDebt, &m.GeneralDebt},
		{"monthly_installment", req.MonthlyInstallment, &m.MonthlyInstallment},
	}
	for _, a := range amounts {
		v, err := util.ParseBaht(a.in)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount for "+a.name)
			return
		}
		*a.dst = v
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		code, err := members.NextMemberCode(tx)
		if err != nil {
			return err
		}
		m.MemberCode = code
		return tx.Create(&m).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create member")
		return
	}

	util.Success(c, util.Response{
		"member": toMemberResp(&m),
	})
}

// UpdateMember updates profile fields. Balances are off limits here; they
// change only through payments or the explicit override endpoint.
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req updateMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	citizenID, ok := util.NormalizeCitizenID(req.CitizenID)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "citizen id must have exactly 13 digits")
		return
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

	m.FirstName = strings.TrimSpace(req.FirstName)
	m.LastName = strings.TrimSpace(req.LastName)
	m.CitizenID = citizenID
	m.Phone = strings.TrimSpace(req.Phone)
	m.Address = strings.TrimSpace(req.Address)
	m.MemberType = req.MemberType
	if req.JoinDate != "" {
		joinDate, ok := parseDateParam(c, req.JoinDate, "join_date")
		if !ok {
			return
		}
		m.JoinDate = joinDate
	}

	if err := h.DB.Save(&m).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}

	util.Success(c, util.Response{
		"member": toMemberResp(&m),
	})
}

// OverrideBalances is the administrative correction endpoint. It bypasses
// the payment path on purpose and is audited separately.
func (h *MemberHandler) OverrideBalances(c *gin.Context) {
	staff, ok := currentStaff(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req overrideBalancesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	changes := map[string]interface{}{}
	amounts := []struct {
		name string
		in   *string
	}{
		{"housing_debt", req.HousingDebt},
		{"land_debt", req.LandDebt},
		{"general_debt", req.GeneralDebt},
		{"shares", req.Shares},
		{"savings", req.Savings},
		{"monthly_installment", req.MonthlyInstallment},
	}
	for _, a := range amounts {
		if a.in == nil {
			continue
		}
		v, err := util.ParseBaht(*a.in)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount for "+a.name)
			return
		}
		changes[a.name] = v
	}
	if req.MissedInstallments != nil {
		if *req.MissedInstallments < 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "missed_installments must not be negative")
			return
		}
		changes["missed_installments"] = *req.MissedInstallments
	}
	if len(changes) == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "no fields to override")
		return
	}

	err = h.Engine.OverrideBalances(uint(id), changes, staff.ID, staff.Username)
	switch {
	case errors.Is(err, billing.ErrMemberNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "member not found")
		return
	case errors.Is(err, billing.ErrUnknownField):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	case err != nil:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "override failed")
		return
	}

	var m models.Member
	if err := h.DB.First(&m, id).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	util.Success(c, util.Response{
		"member": toMemberResp(&m),
	})
}

// DeleteMember removes a member and all owned payments in one transaction.
// Mirrored ledger entries stay: the income they record did happen.
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	staff, ok := currentStaff(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var m models.Member
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}
		if err := tx.Where("member_id = ?", m.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&m).Error; err != nil {
			return err
		}

		meta, _ := json.Marshal(gin.H{"member_code": m.MemberCode, "name": m.FullName()})
		audit := models.AuditLog{
			StaffID:  &staff.ID,
			MemberID: &m.ID,
			Action:   models.AuditMemberDeleted + " by " + staff.Username,
			Metadata: string(meta),
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "member not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		}
		return
	}

	util.Success(c, util.Response{
		"message": "member deleted",
	})
}

// parseDateParam parses a YYYY-MM-DD field, writing the error response on
// failure.
func parseDateParam(c *gin.Context, s, field string) (time.Time, bool) {
	t, err := util.ParseDate(s)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, field+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
