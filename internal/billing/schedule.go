package billing

import (
	"strconv"
	"time"

	"github.com/nureesan1/taawoon-sub000/internal/models"
)

// MonthRow is one line of the yearly amortization schedule.
type MonthRow struct {
	Seq              int    `json:"seq"`   // 1..12
	Label            string `json:"label"` // e.g. "March 2025"
	Scheduled        int64  `json:"scheduled"`
	Paid             int64  `json:"paid"`
	Balance          int64  `json:"balance"`
	FirstPaymentDate string `json:"first_payment_date"` // YYYY-MM-DD, empty if none
}

// Schedule is the per-year projection of a member's installment plan:
// obligation vs. payment vs. running balance, month by month.
type Schedule struct {
	Year         int        `json:"year"`
	InitialDebt  int64      `json:"initial_debt"`
	Months       []MonthRow `json:"months"`
	FinalBalance int64      `json:"final_balance"`
	FinalMissed  int        `json:"final_missed"`
	TotalPaid    int64      `json:"total_paid"`
}

// BuildSchedule computes the 12-month amortization schedule for one
// calendar year. Pure function: it never mutates payments and has no
// side effects.
//
// The brought-forward arrears value monthlyInstallment*missedBroughtForward
// seeds the running balance. Payments are bucketed by the month of PaidAt
// (the payment date, not the recording timestamp), and only the
// debt-service categories (housing, land, general loan) count toward
// installment payoff. Each month adds one scheduled installment to the
// balance and subtracts what was paid; the missed counter increments on a
// short month and is paid down by whole extra installments, never below
// zero.
//
// A zero monthly installment means the member has no installment plan: the
// schedule is a flat run of zeros and the missed counter never moves.
func BuildSchedule(monthlyInstallment int64, missedBroughtForward int, payments []models.Payment, year int) Schedule {
	var (
		paid  [12]int64
		first [12]string
	)
	for i := range payments {
		p := &payments[i]
		if p.PaidAt.Year() != year {
			continue
		}
		m := int(p.PaidAt.Month()) - 1
		paid[m] += p.DebtService()
		if first[m] == "" {
			first[m] = p.PaidAt.Format("2006-01-02")
		}
	}

	if monthlyInstallment <= 0 {
		return flatSchedule(missedBroughtForward, year)
	}

	initialDebt := monthlyInstallment * int64(missedBroughtForward)
	balance := initialDebt
	missed := missedBroughtForward

	var totalPaid int64
	months := make([]MonthRow, 0, 12)
	for m := 0; m < 12; m++ {
		balance += monthlyInstallment - paid[m]
		totalPaid += paid[m]

		switch {
		case paid[m] < monthlyInstallment:
			missed++
		case paid[m] > monthlyInstallment:
			extra := int(paid[m]/monthlyInstallment) - 1
			missed -= extra
			if missed < 0 {
				missed = 0
			}
		}

		months = append(months, MonthRow{
			Seq:              m + 1,
			Label:            monthLabel(m, year),
			Scheduled:        monthlyInstallment,
			Paid:             paid[m],
			Balance:          balance,
			FirstPaymentDate: first[m],
		})
	}

	return Schedule{
		Year:         year,
		InitialDebt:  initialDebt,
		Months:       months,
		FinalBalance: balance,
		FinalMissed:  missed,
		TotalPaid:    totalPaid,
	}
}

// flatSchedule is the degenerate no-installment-plan case: all amounts zero,
// balance pinned at zero, missed counter untouched.
func flatSchedule(missed int, year int) Schedule {
	months := make([]MonthRow, 0, 12)
	for m := 0; m < 12; m++ {
		months = append(months, MonthRow{
			Seq:   m + 1,
			Label: monthLabel(m, year),
		})
	}
	return Schedule{
		Year:        year,
		Months:      months,
		FinalMissed: missed,
	}
}

func monthLabel(m, year int) string {
	return time.Month(m+1).String() + " " + strconv.Itoa(year)
}
