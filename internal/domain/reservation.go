package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	MinDepositRate       = decimal.NewFromFloat(0.10)
	SuggestedDepositRate = decimal.NewFromFloat(0.30)
)

// MinimumDeposit is the smallest deposit accepted for total.
func MinimumDeposit(total decimal.Decimal) decimal.Decimal {
	return total.Mul(MinDepositRate)
}

// SuggestedDeposit is the deposit offered by default when reserving.
func SuggestedDeposit(total decimal.Decimal) decimal.Decimal {
	return total.Mul(SuggestedDepositRate).Round(2)
}

// ValidateDeposit accepts 10% of total <= deposit < total.
func ValidateDeposit(deposit, total decimal.Decimal) error {
	if !total.IsPositive() {
		return NewValidationError("total_amount", "must be greater than 0")
	}
	if deposit.GreaterThanOrEqual(total) {
		return NewValidationError("deposit_amount", "must be less than the total price %s", total.StringFixed(2))
	}
	if minimum := MinimumDeposit(total); deposit.LessThan(minimum) {
		return NewValidationError("deposit_amount", "must be at least 10%% of the total price (%s)", minimum.StringFixed(2))
	}
	return nil
}

// EffectiveReservationStatus relabels an active reservation past its due
// date as expired. Nothing is written back.
func EffectiveReservationStatus(status ReservationStatus, due, now time.Time) ReservationStatus {
	if status == ReservationActive && pastDue(due, now) {
		return ReservationExpired
	}
	return status
}

// NextReservationStatus validates an explicit complete/cancel request.
func NextReservationStatus(r *Reservation, target ReservationStatus, now time.Time) (ReservationStatus, error) {
	if target != ReservationCompleted && target != ReservationCancelled {
		return "", ErrInvalidTransition
	}
	if EffectiveReservationStatus(r.Status, r.DueDate, now).Terminal() {
		return "", ErrInvalidTransition
	}
	return target, nil
}

// ReservationSummary aggregates a reservation list for display.
type ReservationSummary struct {
	Active          int             `json:"active"`
	DepositsHeld    decimal.Decimal `json:"deposits_held"`
	CompletedValue  decimal.Decimal `json:"completed_value"`
	OutstandingHeld decimal.Decimal `json:"outstanding_held"`
}

func SummarizeReservations(reservations []*Reservation) ReservationSummary {
	summary := ReservationSummary{
		DepositsHeld:    decimal.Zero,
		CompletedValue:  decimal.Zero,
		OutstandingHeld: decimal.Zero,
	}
	for _, r := range reservations {
		switch r.Status {
		case ReservationActive:
			summary.Active++
			summary.DepositsHeld = summary.DepositsHeld.Add(r.DepositAmount)
			summary.OutstandingHeld = summary.OutstandingHeld.Add(r.Remaining())
		case ReservationCompleted:
			summary.CompletedValue = summary.CompletedValue.Add(r.TotalAmount)
		}
	}
	return summary
}
