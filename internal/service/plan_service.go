package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/events"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository"
)

// PlanView is a payment plan as shown to clients: statuses relabeled for
// the current date plus collection progress.
type PlanView struct {
	*domain.PaymentPlan
	StatusLabel string              `json:"status_label"`
	Progress    domain.PlanProgress `json:"progress"`
}

type PlanService struct {
	plans  repository.PlanRepository
	sales  repository.SaleRepository
	notify *Notifier
	now    func() time.Time
}

func NewPlanService(plans repository.PlanRepository, sales repository.SaleRepository, notify *Notifier) *PlanService {
	return &PlanService{plans: plans, sales: sales, notify: notify, now: time.Now}
}

func (s *PlanService) view(plan *domain.PaymentPlan, now time.Time) *PlanView {
	domain.ApplyEffectiveStatus(plan, now)
	return &PlanView{
		PaymentPlan: plan,
		StatusLabel: domain.PlanStatusLabel(plan.Status),
		Progress:    domain.ProgressOf(plan),
	}
}

// CreatePlan converts a sale into installmentCount installments due
// between today and the plan due date. Plan and installments are written
// together or not at all; a second plan for the same sale fails with
// ErrAlreadyExists.
func (s *PlanService) CreatePlan(ctx context.Context, in domain.CreatePlanInput, userID *string) (*PlanView, error) {
	now := s.now()
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if err := domain.ValidateInstallmentCount(in.InstallmentCount); err != nil {
		return nil, err
	}
	if in.DueDate.IsZero() {
		return nil, domain.NewValidationError("due_date", "is required")
	}
	if !in.DueDate.After(now) {
		return nil, domain.NewValidationError("due_date", "must be in the future")
	}

	sale, err := s.sales.GetByID(ctx, in.SaleID)
	if err != nil {
		return nil, err
	}

	perInstallment, installments, err := domain.BuildSchedule(sale.TotalPrice, in.InstallmentCount, now, in.DueDate.Time)
	if err != nil {
		return nil, err
	}
	for _, inst := range installments {
		inst.ID = newID()
	}

	plan := &domain.PaymentPlan{
		ID:                   newID(),
		SaleID:               sale.ID,
		InstallmentCount:     in.InstallmentCount,
		TotalAmount:          sale.TotalPrice,
		AmountPerInstallment: perInstallment,
		StartDate:            domain.StartOfDay(now),
		DueDate:              in.DueDate.Time,
		Status:               domain.PlanPending,
		Notes:                in.Notes,
		UserID:               userID,
		Customer:             sale.Customer,
		ProductName:          sale.ProductName,
	}

	if err := s.plans.CreateWithInstallments(ctx, plan, installments); err != nil {
		return nil, fmt.Errorf("failed to create payment plan: %w", err)
	}

	s.notify.Changed(ctx, events.TablePlans, events.ActionInsert, plan.ID)
	return s.view(plan, now), nil
}

// RegisterPayment adds a payment to an installment and recomputes the
// plan status. Both rows stay locked while the payment is applied, so
// concurrent payments cannot push the installment past its amount.
func (s *PlanService) RegisterPayment(ctx context.Context, installmentID string, in domain.RegisterPaymentInput) (*PlanView, error) {
	now := s.now()
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if err := domain.RequirePositive("amount", in.Amount); err != nil {
		return nil, err
	}
	amount := in.Amount.Round(2)

	plan, err := s.plans.UpdateInstallment(ctx, installmentID, func(plan *domain.PaymentPlan, inst *domain.Installment) error {
		if domain.EffectivePlanStatus(plan.Status, plan.DueDate, now).Terminal() {
			return fmt.Errorf("%w: payment plan is %s", domain.ErrInvalidTransition, plan.Status)
		}

		result, err := domain.ApplyPayment(inst, amount, now)
		if err != nil {
			return err
		}
		inst.AmountPaid = result.AmountPaid
		inst.Status = result.Status
		inst.PaidDate = result.PaidDate
		if in.PaymentMethod != nil {
			inst.PaymentMethod = in.PaymentMethod
		}
		if in.Notes != nil {
			inst.Notes = in.Notes
		}

		plan.Status = domain.PlanStatusFor(plan.Status, plan.Installments)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify.Changed(ctx, events.TableInstallments, events.ActionUpdate, installmentID)
	s.notify.Changed(ctx, events.TablePlans, events.ActionUpdate, plan.ID)
	return s.view(plan, now), nil
}

// CancelPlan moves an open plan to cancelled.
func (s *PlanService) CancelPlan(ctx context.Context, id string) (*PlanView, error) {
	now := s.now()
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if domain.EffectivePlanStatus(plan.Status, plan.DueDate, now).Terminal() {
		return nil, fmt.Errorf("%w: payment plan is %s", domain.ErrInvalidTransition,
			domain.EffectivePlanStatus(plan.Status, plan.DueDate, now))
	}

	open := []domain.PlanStatus{domain.PlanPending, domain.PlanInProgress}
	if err := s.plans.UpdateStatus(ctx, id, open, domain.PlanCancelled); err != nil {
		return nil, err
	}
	plan.Status = domain.PlanCancelled

	s.notify.Changed(ctx, events.TablePlans, events.ActionUpdate, plan.ID)
	return s.view(plan, now), nil
}

func (s *PlanService) GetPlan(ctx context.Context, id string) (*PlanView, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(plan, s.now()), nil
}

// ListPlans filters on the stored status. Plans past due that the sweeper
// has not reached yet still list under their stored status but read as
// expired.
func (s *PlanService) ListPlans(ctx context.Context, filter domain.PlanFilter) ([]*PlanView, int, error) {
	if filter.Status != "" {
		status, ok := domain.ParsePlanStatus(filter.Status)
		if !ok {
			return nil, 0, domain.NewValidationError("status", "unknown plan status %q", filter.Status)
		}
		filter.Status = string(status)
	}

	plans, total, err := s.plans.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	views := make([]*PlanView, len(plans))
	for i, p := range plans {
		views[i] = s.view(p, now)
	}
	return views, total, nil
}
