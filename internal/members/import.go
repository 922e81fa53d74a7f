package members

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nureesan1/taawoon-sub000/internal/models"
	"github.com/nureesan1/taawoon-sub000/internal/util"
)

// The bulk onboarding format: tab-separated rows, 13 fixed columns.
//
//	first name, last name, citizen id, phone, address, type code (1|2),
//	shares, savings, housing debt, land debt, general debt,
//	monthly installment, missed installments
//
// Amounts are baht strings; balances land on the member as satang.
const importColumns = 13

// RowError describes why one input line was rejected.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportRow is one accepted line, carrying its source line number for
// reporting. MemberCode and JoinDate are left for the caller to assign
// at insert time.
type ImportRow struct {
	Line   int
	Member models.Member
}

// ParseTSV parses bulk onboarding text. A row is valid iff first and last
// name are non-empty and the citizen id has exactly 13 digits after
// stripping non-digits. Blank lines are skipped. Invalid rows are reported,
// not fatal.
func ParseTSV(text string) ([]ImportRow, []RowError) {
	var (
		rows    []ImportRow
		rowErrs []RowError
	)

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lineNo := i + 1
		if strings.TrimSpace(line) == "" {
			continue
		}

		row, err := parseLine(line)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: lineNo, Reason: err.Error()})
			continue
		}
		rows = append(rows, ImportRow{Line: lineNo, Member: row})
	}
	return rows, rowErrs
}

func parseLine(line string) (models.Member, error) {
	var m models.Member

	cols := strings.Split(line, "\t")
	if len(cols) != importColumns {
		return m, fmt.Errorf("expected %d columns, got %d", importColumns, len(cols))
	}

	m.FirstName = strings.TrimSpace(cols[0])
	m.LastName = strings.TrimSpace(cols[1])
	if m.FirstName == "" || m.LastName == "" {
		return m, fmt.Errorf("first and last name are required")
	}

	id, ok := util.NormalizeCitizenID(cols[2])
	if !ok {
		return m, fmt.Errorf("citizen id must have exactly 13 digits")
	}
	m.CitizenID = id

	m.Phone = strings.TrimSpace(cols[3])
	m.Address = strings.TrimSpace(cols[4])

	switch strings.TrimSpace(cols[5]) {
	case "1":
		m.MemberType = models.MemberTypeOrdinary
	case "2":
		m.MemberType = models.MemberTypeAssociate
	default:
		return m, fmt.Errorf("unknown member type code %q", strings.TrimSpace(cols[5]))
	}

	amounts := []struct {
		name string
		dst  *int64
	}{
		{"shares", &m.Shares},
		{"savings", &m.Savings},
		{"housing debt", &m.HousingDebt},
		{"land debt", &m.LandDebt},
		{"general debt", &m.GeneralDebt},
		{"monthly installment", &m.MonthlyInstallment},
	}
	for j, a := range amounts {
		v, err := util.ParseBaht(cols[6+j])
		if err != nil {
			return m, fmt.Errorf("%s: %v", a.name, err)
		}
		*a.dst = v
	}

	missedStr := strings.TrimSpace(cols[12])
	if missedStr != "" {
		missed, err := strconv.Atoi(missedStr)
		if err != nil || missed < 0 {
			return m, fmt.Errorf("missed installments must be a non-negative integer")
		}
		m.MissedInstallments = missed
	}

	return m, nil
}
