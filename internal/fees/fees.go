// internal/fees/fees.go

// Package fees implements the late-fee policy: $0.50 per day for the
// first seven overdue days, $1.00 per day after that, capped at $15.00.
// Overdue days are counted on calendar dates; time of day is ignored.
package fees

import (
	"math"
	"time"
)

const (
	// LoanPeriodDays is the fixed loan term: due date = borrow date + 14 days.
	LoanPeriodDays = 14

	// MaxFee is the cap on any single assessment.
	MaxFee = 15.00

	firstTierRate  = 0.50
	secondTierRate = 1.00
	firstTierDays  = 7
)

// Assessment is the result of applying the fee policy to one loan.
type Assessment struct {
	Amount      float64 `json:"fee_amount"`
	DaysOverdue int     `json:"days_overdue"`
}

// Zero is the "no history = no debt" assessment.
func Zero() Assessment {
	return Assessment{Amount: 0.00, DaysOverdue: 0}
}

// DueDate returns the due date for a loan opened at borrowDate.
func DueDate(borrowDate time.Time) time.Time {
	return borrowDate.AddDate(0, 0, LoanPeriodDays)
}

// Assess computes the fee for a loan due at dueDate that stopped accruing
// at stop (the return instant for a closed loan, the current time for an
// open one).
func Assess(dueDate, stop time.Time) Assessment {
	days := daysBetween(dueDate, stop)
	if days < 0 {
		days = 0
	}

	fee := firstTierRate*float64(min(days, firstTierDays)) +
		secondTierRate*float64(max(days-firstTierDays, 0))
	fee = math.Min(fee, MaxFee)

	return Assessment{Amount: Round2(fee), DaysOverdue: days}
}

// AssessAt applies Assess with the stop instant picked from the loan state:
// the return date when set, otherwise now.
func AssessAt(dueDate time.Time, returnDate *time.Time, now time.Time) Assessment {
	stop := now
	if returnDate != nil {
		stop = *returnDate
	}
	return Assess(dueDate, stop)
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// daysBetween counts whole calendar days from a's date to b's date,
// ignoring time-of-day components.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
