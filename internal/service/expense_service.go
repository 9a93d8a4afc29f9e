package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/events"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository"
)

type ExpenseService struct {
	expenses repository.ExpenseRepository
	notify   *Notifier
	now      func() time.Time
}

func NewExpenseService(expenses repository.ExpenseRepository, notify *Notifier) *ExpenseService {
	return &ExpenseService{expenses: expenses, notify: notify, now: time.Now}
}

func (s *ExpenseService) validate(in *domain.ExpenseInput) error {
	in.Concept = strings.TrimSpace(in.Concept)
	if err := domain.Validate(*in); err != nil {
		return err
	}
	return domain.RequirePositive("amount", in.Amount)
}

func (s *ExpenseService) expenseDate(in domain.ExpenseInput) time.Time {
	if in.ExpenseDate != nil && !in.ExpenseDate.IsZero() {
		return in.ExpenseDate.Time
	}
	return domain.StartOfDay(s.now())
}

func (s *ExpenseService) CreateExpense(ctx context.Context, in domain.ExpenseInput, userID *string) (*domain.Expense, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	expense := &domain.Expense{
		ID:          newID(),
		Concept:     in.Concept,
		Amount:      in.Amount.Round(2),
		Category:    in.Category,
		Description: in.Description,
		ExpenseDate: s.expenseDate(in),
		UserID:      userID,
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.notify.Changed(ctx, events.TableExpenses, events.ActionInsert, expense.ID)
	return expense, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	return s.expenses.GetByID(ctx, id)
}

func (s *ExpenseService) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]*domain.Expense, int, error) {
	return s.expenses.List(ctx, filter)
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, id string, in domain.ExpenseInput) (*domain.Expense, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	expense, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expense.Concept = in.Concept
	expense.Amount = in.Amount.Round(2)
	expense.Category = in.Category
	expense.Description = in.Description
	if in.ExpenseDate != nil && !in.ExpenseDate.IsZero() {
		expense.ExpenseDate = in.ExpenseDate.Time
	}

	if err := s.expenses.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	s.notify.Changed(ctx, events.TableExpenses, events.ActionUpdate, expense.ID)
	return expense, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.expenses.Delete(ctx, id); err != nil {
		return err
	}
	s.notify.Changed(ctx, events.TableExpenses, events.ActionDelete, id)
	return nil
}
