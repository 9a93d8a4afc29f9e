package handlers

import (
	"context"
	"net/http"

	"github.com/andresuchdata/joyeria/backend-go/internal/api/middleware"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

const defaultExpensePageSize = 100

type ExpenseService interface {
	CreateExpense(ctx context.Context, in domain.ExpenseInput, userID *string) (*domain.Expense, error)
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]*domain.Expense, int, error)
	UpdateExpense(ctx context.Context, id string, in domain.ExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

type ExpenseHandler struct {
	expenses ExpenseService
}

func NewExpenseHandler(expenses ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	var in domain.ExpenseInput
	if !bindJSON(c, &in) {
		return
	}
	expense, err := h.expenses.CreateExpense(c.Request.Context(), in, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) List(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	filter := domain.ExpenseFilter{Page: parsePage(c), Category: c.Query("category"), From: from, To: to}
	expenses, total, err := h.expenses.ListExpenses(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if expenses == nil {
		expenses = []*domain.Expense{}
	}
	c.JSON(http.StatusOK, paged(expenses, total, filter.Page, defaultExpensePageSize))
}

func (h *ExpenseHandler) Update(c *gin.Context) {
	var in domain.ExpenseInput
	if !bindJSON(c, &in) {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	expense, err := h.expenses.UpdateExpense(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.expenses.DeleteExpense(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
