package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/api/middleware"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ReservationService interface {
	CreateReservation(ctx context.Context, in domain.CreateReservationInput, userID *string) (*domain.Reservation, error)
	GetReservation(ctx context.Context, id string) (*domain.Reservation, error)
	ListReservations(ctx context.Context, filter domain.ReservationFilter) (*service.ReservationList, error)
	Complete(ctx context.Context, id string) (*domain.Reservation, error)
	Cancel(ctx context.Context, id string) (*domain.Reservation, error)
}

type ReservationHandler struct {
	reservations ReservationService
}

func NewReservationHandler(reservations ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var in domain.CreateReservationInput
	if !bindJSON(c, &in) {
		return
	}
	if err := checkID("product_id", in.ProductID); err != nil {
		respondError(c, err)
		return
	}
	reservation, err := h.reservations.CreateReservation(c.Request.Context(), in, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservation)
}

func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	reservation, err := h.reservations.GetReservation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

func (h *ReservationHandler) List(c *gin.Context) {
	list, err := h.reservations.ListReservations(c.Request.Context(), domain.ReservationFilter{
		Status: c.Query("status"),
		Search: strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) Complete(c *gin.Context) {
	h.transition(c, h.reservations.Complete)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.reservations.Cancel)
}

func (h *ReservationHandler) transition(c *gin.Context, apply func(context.Context, string) (*domain.Reservation, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	reservation, err := apply(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}
