package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/nureesan1/taawoon-sub000/internal/members"
	"github.com/nureesan1/taawoon-sub000/internal/models"
	"github.com/nureesan1/taawoon-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportExportHandler serves the member register export (CSV/XLSX) and the
// bulk onboarding import.
type ImportExportHandler struct {
	DB *gorm.DB
}

func NewImportExportHandler(db *gorm.DB) *ImportExportHandler {
	return &ImportExportHandler{DB: db}
}

// register export column order, fixed
var registerHeader = []string{
	"Member Code", "Name", "Citizen ID", "Phone", "Address", "Member Type", "Join Date",
}

func registerRow(m *models.Member) []string {
	joinDate := ""
	if !m.JoinDate.IsZero() {
		joinDate = m.JoinDate.Format("2006-01-02")
	}
	return []string{
		m.MemberCode,
		m.FullName(),
		m.CitizenID,
		m.Phone,
		m.Address,
		models.MemberTypeLabel(m.MemberType),
		joinDate,
	}
}

func (h *ImportExportHandler) allMembers() ([]models.Member, error) {
	var list []models.Member
	err := h.DB.Order("length(member_code) ASC, member_code ASC").Find(&list).Error
	return list, err
}

// ExportCSV writes the member register as CSV.
func (h *ImportExportHandler) ExportCSV(c *gin.Context) {
	list, err := h.allMembers()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"members_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so Excel renders Thai names correctly
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(registerHeader)
	for i := range list {
		writer.Write(registerRow(&list[i]))
	}
}

// ExportXLSX writes the member register as an Excel workbook.
func (h *ImportExportHandler) ExportXLSX(c *gin.Context) {
	list, err := h.allMembers()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header := make([]interface{}, len(registerHeader))
	for i, v := range registerHeader {
		header[i] = v
	}
	f.SetSheetRow(sheet, "A1", &header)

	for i := range list {
		row := registerRow(&list[i])
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(sheet, cell, &values)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"members_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
		return
	}
}

type importReq struct {
	Data string `json:"data" binding:"required"`
}

// ImportMembers accepts the 13-column tab-separated onboarding format.
// Valid rows are inserted with sequentially assigned member codes; invalid
// rows are reported per line and skipped.
func (h *ImportExportHandler) ImportMembers(c *gin.Context) {
	var req importReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	rows, rowErrs := members.ParseTSV(req.Data)

	imported := make([]memberResp, 0, len(rows))
	if len(rows) > 0 {
		err := h.DB.Transaction(func(tx *gorm.DB) error {
			now := time.Now()
			for i := range rows {
				m := rows[i].Member
				code, err := members.NextMemberCode(tx)
				if err != nil {
					return err
				}
				m.MemberCode = code
				m.JoinDate = now
				if err := tx.Create(&m).Error; err != nil {
					return fmt.Errorf("line %d: %w", rows[i].Line, err)
				}
				imported = append(imported, toMemberResp(&m))
			}
			return nil
		})
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "import failed: "+err.Error())
			return
		}
	}

	if rowErrs == nil {
		rowErrs = []members.RowError{}
	}
	util.Success(c, util.Response{
		"imported": len(imported),
		"rejected": len(rowErrs),
		"errors":   rowErrs,
		"members":  imported,
	})
}
