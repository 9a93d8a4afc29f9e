package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinInstallments = 2
	MaxInstallments = 24
)

// ValidateInstallmentCount enforces the 2..24 installment range.
func ValidateInstallmentCount(n int) error {
	if n < MinInstallments || n > MaxInstallments {
		return NewValidationError("installment_count", "must be between %d and %d", MinInstallments, MaxInstallments)
	}
	return nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysUntil returns the whole number of days from start to due, rounding
// any partial day up.
func daysUntil(start, due time.Time) int {
	diff := due.Sub(start)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// BuildSchedule splits total into count installments due between start and
// due. Installment i (0-based) falls ceil((i+1)*days/count) days after
// start, where days is the span rounded up to whole days, so the last
// installment lands on the due date. Amounts are rounded to cents and the
// last installment absorbs the remainder, keeping the sum equal to total.
func BuildSchedule(total decimal.Decimal, count int, start, due time.Time) (decimal.Decimal, []*Installment, error) {
	if err := ValidateInstallmentCount(count); err != nil {
		return decimal.Zero, nil, err
	}
	if !total.IsPositive() {
		return decimal.Zero, nil, NewValidationError("total_amount", "must be greater than 0")
	}
	if !due.After(start) {
		return decimal.Zero, nil, NewValidationError("due_date", "must be in the future")
	}

	days := daysUntil(start, due)
	perInstallment := total.DivRound(decimal.NewFromInt(int64(count)), 2)
	last := total.Sub(perInstallment.Mul(decimal.NewFromInt(int64(count - 1))))
	if !last.IsPositive() {
		return decimal.Zero, nil, NewValidationError("total_amount", "too small to split into %d installments", count)
	}

	startDay := StartOfDay(start)
	installments := make([]*Installment, count)
	for i := 0; i < count; i++ {
		offset := ((i+1)*days + count - 1) / count
		amount := perInstallment
		if i == count-1 {
			amount = last
		}
		installments[i] = &Installment{
			SequenceNumber: i + 1,
			Amount:         amount,
			AmountPaid:     decimal.Zero,
			DueDate:        startDay.AddDate(0, 0, offset),
			Status:         InstallmentPending,
		}
	}

	return perInstallment, installments, nil
}

// PaymentResult is the new state of an installment after a payment.
type PaymentResult struct {
	AmountPaid decimal.Decimal
	Status     InstallmentStatus
	PaidDate   *time.Time
}

// ApplyPayment adds amount to the installment's paid total. A payment
// that would push the total past the installment amount is rejected.
func ApplyPayment(inst *Installment, amount decimal.Decimal, now time.Time) (PaymentResult, error) {
	if err := RequirePositive("amount", amount); err != nil {
		return PaymentResult{}, err
	}

	switch EffectiveInstallmentStatus(inst.Status, inst.DueDate, now) {
	case InstallmentPaid, InstallmentExpired:
		return PaymentResult{}, ErrInvalidTransition
	}

	paid := inst.AmountPaid.Add(amount)
	if paid.GreaterThan(inst.Amount) {
		return PaymentResult{}, NewValidationError("amount", "payment exceeds outstanding balance of %s", inst.Outstanding().StringFixed(2))
	}

	result := PaymentResult{AmountPaid: paid, Status: InstallmentPartial, PaidDate: inst.PaidDate}
	if paid.GreaterThanOrEqual(inst.Amount) {
		result.Status = InstallmentPaid
		if result.PaidDate == nil {
			day := StartOfDay(now)
			result.PaidDate = &day
		}
	}
	return result, nil
}

// PlanStatusFor derives the plan status from its installments: completed
// when all are paid, in progress once any payment was recorded.
func PlanStatusFor(current PlanStatus, installments []*Installment) PlanStatus {
	if current.Terminal() || len(installments) == 0 {
		return current
	}

	allPaid := true
	anyPaid := false
	for _, inst := range installments {
		if inst.Status != InstallmentPaid {
			allPaid = false
		}
		if inst.AmountPaid.IsPositive() {
			anyPaid = true
		}
	}

	switch {
	case allPaid:
		return PlanCompleted
	case anyPaid:
		return PlanInProgress
	default:
		return PlanPending
	}
}

// pastDue reports whether due lies on a day before now's day.
func pastDue(due, now time.Time) bool {
	return StartOfDay(due).Before(StartOfDay(now.In(due.Location())))
}

// EffectiveInstallmentStatus relabels a pending installment whose due
// date has passed as expired. Nothing is written back.
func EffectiveInstallmentStatus(status InstallmentStatus, due, now time.Time) InstallmentStatus {
	if status == InstallmentPending && pastDue(due, now) {
		return InstallmentExpired
	}
	return status
}

// EffectivePlanStatus relabels an open plan past its due date as expired.
func EffectivePlanStatus(status PlanStatus, due, now time.Time) PlanStatus {
	if !status.Terminal() && pastDue(due, now) {
		return PlanExpired
	}
	return status
}

// ApplyEffectiveStatus rewrites the plan and its installments with their
// read-time statuses.
func ApplyEffectiveStatus(plan *PaymentPlan, now time.Time) {
	if plan.Status == PlanCancelled {
		// The expiry sweep leaves cancelled plans alone, so reads do too.
		return
	}
	plan.Status = EffectivePlanStatus(plan.Status, plan.DueDate, now)
	for _, inst := range plan.Installments {
		inst.Status = EffectiveInstallmentStatus(inst.Status, inst.DueDate, now)
	}
}

// PlanProgress summarizes collected amounts for display.
type PlanProgress struct {
	PaidInstallments int             `json:"paid_installments"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	AmountRemaining  decimal.Decimal `json:"amount_remaining"`
}

func ProgressOf(plan *PaymentPlan) PlanProgress {
	progress := PlanProgress{AmountPaid: decimal.Zero}
	for _, inst := range plan.Installments {
		if inst.Status == InstallmentPaid {
			progress.PaidInstallments++
		}
		progress.AmountPaid = progress.AmountPaid.Add(inst.AmountPaid)
	}
	progress.AmountRemaining = plan.TotalAmount.Sub(progress.AmountPaid)
	return progress
}
