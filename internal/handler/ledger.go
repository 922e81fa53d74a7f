package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nureesan1/taawoon-sub000/internal/models"
	"github.com/nureesan1/taawoon-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerHandler serves society-level income/expense bookkeeping. Entries
// mirrored from member payments are read-only here; they are managed by the
// billing engine together with the member balances.
type LedgerHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewLedgerHandler(db *gorm.DB, pageSize int) *LedgerHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &LedgerHandler{DB: db, PageSize: pageSize}
}

type ledgerReq struct {
	EntryDate   string `json:"entry_date"` // YYYY-MM-DD, defaults to today
	Type        string `json:"type" binding:"required,oneof=income expense"`
	Category    string `json:"category" binding:"required,max=64"`
	Description string `json:"description" binding:"max=255"`
	Amount      string `json:"amount" binding:"required"`
	Method      string `json:"method" binding:"omitempty,oneof=cash transfer"`
	RecordedBy  string `json:"recorded_by" binding:"max=64"`
	Note        string `json:"note" binding:"max=255"`
}

type ledgerResp struct {
	ID              string    `json:"id"`
	EntryDate       string    `json:"entry_date"`
	Type            string    `json:"type"`
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	Amount          int64     `json:"amount_satang"`
	AmountBaht      string    `json:"amount"`
	Method          string    `json:"method"`
	RecordedBy      string    `json:"recorded_by"`
	Note            string    `json:"note"`
	SourcePaymentID string    `json:"source_payment_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toLedgerResp(l *models.LedgerEntry) ledgerResp {
	src := ""
	if l.SourcePaymentID != nil {
		src = *l.SourcePaymentID
	}
	return ledgerResp{
		ID:              l.ID,
		EntryDate:       l.EntryDate.Format("2006-01-02"),
		Type:            l.Type,
		Category:        l.Category,
		Description:     l.Description,
		Amount:          l.Amount,
		AmountBaht:      util.FormatSatang(l.Amount),
		Method:          l.Method,
		RecordedBy:      l.RecordedBy,
		Note:            l.Note,
		SourcePaymentID: src,
		CreatedAt:       l.CreatedAt,
	}
}

// ListLedger returns ledger entries with date-range and type filters plus
// income/expense totals over the same filter.
func (h *LedgerHandler) ListLedger(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.PageSize)))
	if size <= 0 || size > 100 {
		size = h.PageSize
	}
	offset := (page - 1) * size

	base := h.DB.Model(&models.LedgerEntry{})
	if s := c.Query("start"); s != "" {
		start, ok := parseDateParam(c, s, "start")
		if !ok {
			return
		}
		base = base.Where("entry_date >= ?", start)
	}
	if s := c.Query("end"); s != "" {
		end, ok := parseDateParam(c, s, "end")
		if !ok {
			return
		}
		// end date is inclusive: < end+1 day
		base = base.Where("entry_date < ?", end.Add(24*time.Hour))
	}
	if t := c.Query("type"); t == models.LedgerIncome || t == models.LedgerExpense {
		base = base.Where("type = ?", t)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var list []models.LedgerEntry
	if err := base.Session(&gorm.Session{}).
		Order("entry_date DESC, created_at DESC").
		Limit(size).
		Offset(offset).
		Find(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]ledgerResp, 0, len(list))
	for i := range list {
		items = append(items, toLedgerResp(&list[i]))
	}

	var sums []struct {
		Type string
		Sum  int64
	}
	if err := base.Session(&gorm.Session{}).
		Select("type, COALESCE(SUM(amount), 0) AS sum").
		Group("type").
		Scan(&sums).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "summary failed")
		return
	}
	var incomeTotal, expenseTotal int64
	for _, s := range sums {
		if s.Type == models.LedgerIncome {
			incomeTotal = s.Sum
		} else {
			expenseTotal = s.Sum
		}
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
		"summary": gin.H{
			"income_satang":  incomeTotal,
			"income":         util.FormatSatang(incomeTotal),
			"expense_satang": expenseTotal,
			"expense":        util.FormatSatang(expenseTotal),
			"balance_satang": incomeTotal - expenseTotal,
			"balance":        util.FormatSatang(incomeTotal - expenseTotal),
		},
	})
}

// CreateLedger records a manual income/expense entry.
func (h *LedgerHandler) CreateLedger(c *gin.Context) {
	var req ledgerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	amount, err := util.ParseBaht(req.Amount)
	if err != nil || amount <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be a positive baht value")
		return
	}

	entryDate := time.Now()
	if req.EntryDate != "" {
		var ok bool
		entryDate, ok = parseDateParam(c, req.EntryDate, "entry_date")
		if !ok {
			return
		}
	}

	entry := models.LedgerEntry{
		ID:          uuid.NewString(),
		EntryDate:   entryDate,
		Type:        req.Type,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Amount:      amount,
		Method:      req.Method,
		RecordedBy:  strings.TrimSpace(req.RecordedBy),
		Note:        strings.TrimSpace(req.Note),
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save entry")
		return
	}

	util.Success(c, util.Response{
		"entry": toLedgerResp(&entry),
	})
}

// UpdateLedger rewrites a manual ledger entry. Mirror entries cannot be
// edited; they would diverge from the payment they reflect.
func (h *LedgerHandler) UpdateLedger(c *gin.Context) {
	entry, ok := h.findEntry(c)
	if !ok {
		return
	}
	if entry.IsMirror() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "entry is managed by payment records")
		return
	}

	var req ledgerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	amount, err := util.ParseBaht(req.Amount)
	if err != nil || amount <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be a positive baht value")
		return
	}
	if req.EntryDate != "" {
		entryDate, ok := parseDateParam(c, req.EntryDate, "entry_date")
		if !ok {
			return
		}
		entry.EntryDate = entryDate
	}

	entry.Type = req.Type
	entry.Category = strings.TrimSpace(req.Category)
	entry.Description = strings.TrimSpace(req.Description)
	entry.Amount = amount
	entry.Method = req.Method
	entry.RecordedBy = strings.TrimSpace(req.RecordedBy)
	entry.Note = strings.TrimSpace(req.Note)

	if err := h.DB.Save(entry).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}

	util.Success(c, util.Response{
		"entry": toLedgerResp(entry),
	})
}

// DeleteLedger removes a manual ledger entry.
func (h *LedgerHandler) DeleteLedger(c *gin.Context) {
	entry, ok := h.findEntry(c)
	if !ok {
		return
	}
	if entry.IsMirror() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "entry is managed by payment records")
		return
	}

	if err := h.DB.Delete(entry).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}

	util.Success(c, util.Response{
		"message": "entry deleted",
	})
}

func (h *LedgerHandler) findEntry(c *gin.Context) (*models.LedgerEntry, bool) {
	id := c.Param("id")
	if id == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return nil, false
	}
	var entry models.LedgerEntry
	if err := h.DB.First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "entry not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return nil, false
	}
	return &entry, true
}
