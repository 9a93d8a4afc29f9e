package handlers

import (
	"context"
	"net/http"

	"github.com/andresuchdata/joyeria/backend-go/internal/api/middleware"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

const defaultPlanPageSize = 50

type PlanService interface {
	CreatePlan(ctx context.Context, in domain.CreatePlanInput, userID *string) (*service.PlanView, error)
	RegisterPayment(ctx context.Context, installmentID string, in domain.RegisterPaymentInput) (*service.PlanView, error)
	CancelPlan(ctx context.Context, id string) (*service.PlanView, error)
	GetPlan(ctx context.Context, id string) (*service.PlanView, error)
	ListPlans(ctx context.Context, filter domain.PlanFilter) ([]*service.PlanView, int, error)
}

type PlanHandler struct {
	plans PlanService
}

func NewPlanHandler(plans PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

func (h *PlanHandler) Create(c *gin.Context) {
	var in domain.CreatePlanInput
	if !bindJSON(c, &in) {
		return
	}
	if err := checkID("sale_id", in.SaleID); err != nil {
		respondError(c, err)
		return
	}
	plan, err := h.plans.CreatePlan(c.Request.Context(), in, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	plan, err := h.plans.GetPlan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) List(c *gin.Context) {
	filter := domain.PlanFilter{Page: parsePage(c), Status: c.Query("status")}
	plans, total, err := h.plans.ListPlans(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if plans == nil {
		plans = []*service.PlanView{}
	}
	c.JSON(http.StatusOK, paged(plans, total, filter.Page, defaultPlanPageSize))
}

func (h *PlanHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	plan, err := h.plans.CancelPlan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// RegisterPayment records a payment against one installment and returns
// the whole plan.
func (h *PlanHandler) RegisterPayment(c *gin.Context) {
	var in domain.RegisterPaymentInput
	if !bindJSON(c, &in) {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	plan, err := h.plans.RegisterPayment(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
