package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/events"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository"
	"github.com/shopspring/decimal"
)

// ReservationList is a layaway listing with its totals.
type ReservationList struct {
	Items   []*domain.Reservation     `json:"items"`
	Summary domain.ReservationSummary `json:"summary"`
}

// DepositQuote is the deposit range offered when reserving a product.
type DepositQuote struct {
	ProductID        string          `json:"product_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	MinimumDeposit   decimal.Decimal `json:"minimum_deposit"`
	SuggestedDeposit decimal.Decimal `json:"suggested_deposit"`
}

type ReservationService struct {
	reservations repository.ReservationRepository
	products     repository.ProductRepository
	notify       *Notifier
	now          func() time.Time
}

func NewReservationService(reservations repository.ReservationRepository, products repository.ProductRepository, notify *Notifier) *ReservationService {
	return &ReservationService{reservations: reservations, products: products, notify: notify, now: time.Now}
}

// CreateReservation holds one product for a customer against a deposit.
// The total is the product's current sale price. At most one reservation
// per product is active; the database rejects the second with
// ErrAlreadyExists.
func (s *ReservationService) CreateReservation(ctx context.Context, in domain.CreateReservationInput, userID *string) (*domain.Reservation, error) {
	now := s.now()
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if in.DueDate.IsZero() {
		return nil, domain.NewValidationError("due_date", "is required")
	}
	if !domain.StartOfDay(in.DueDate.Time).After(domain.StartOfDay(now.In(in.DueDate.Location()))) {
		return nil, domain.NewValidationError("due_date", "must be in the future")
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Stock <= 0 {
		return nil, fmt.Errorf("%w: %s is out of stock", domain.ErrInsufficientStock, product.Name)
	}

	total := product.SalePrice
	deposit := in.DepositAmount.Round(2)
	if err := domain.ValidateDeposit(deposit, total); err != nil {
		return nil, err
	}

	reservation := &domain.Reservation{
		ID:            newID(),
		ProductID:     product.ID,
		ProductName:   product.Name,
		CustomerName:  in.CustomerName,
		Phone:         in.Phone,
		Email:         in.Email,
		DepositAmount: deposit,
		TotalAmount:   total,
		DueDate:       in.DueDate.Time,
		Status:        domain.ReservationActive,
		Notes:         in.Notes,
		UserID:        userID,
	}

	if err := s.reservations.Create(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.notify.Changed(ctx, events.TableReservations, events.ActionInsert, reservation.ID)
	return reservation, nil
}

// Complete records final payment and handover. Stock is not adjusted.
func (s *ReservationService) Complete(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.transition(ctx, id, domain.ReservationCompleted)
}

// Cancel releases the product for a new reservation.
func (s *ReservationService) Cancel(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.transition(ctx, id, domain.ReservationCancelled)
}

func (s *ReservationService) transition(ctx context.Context, id string, target domain.ReservationStatus) (*domain.Reservation, error) {
	reservation, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := domain.NextReservationStatus(reservation, target, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.reservations.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	reservation.Status = next

	s.notify.Changed(ctx, events.TableReservations, events.ActionUpdate, id)
	return reservation, nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	reservation, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reservation.Status = domain.EffectiveReservationStatus(reservation.Status, reservation.DueDate, s.now())
	return reservation, nil
}

// ListReservations relabels past-due active reservations as expired
// before filtering by status, so the listing never depends on whether the
// sweeper has run. Nothing is written.
func (s *ReservationService) ListReservations(ctx context.Context, filter domain.ReservationFilter) (*ReservationList, error) {
	var want domain.ReservationStatus
	if filter.Status != "" {
		status, ok := domain.ParseReservationStatus(filter.Status)
		if !ok {
			return nil, domain.NewValidationError("status", "unknown reservation status %q", filter.Status)
		}
		want = status
	}

	stored := filter
	stored.Status = ""
	if want == domain.ReservationCompleted || want == domain.ReservationCancelled {
		stored.Status = string(want)
	}

	all, err := s.reservations.List(ctx, stored)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]*domain.Reservation, 0, len(all))
	for _, r := range all {
		r.Status = domain.EffectiveReservationStatus(r.Status, r.DueDate, now)
		if want != "" && r.Status != want {
			continue
		}
		items = append(items, r)
	}

	return &ReservationList{Items: items, Summary: domain.SummarizeReservations(items)}, nil
}

// QuoteDeposit returns the deposit bounds for reserving a product.
func (s *ReservationService) QuoteDeposit(ctx context.Context, productID string) (*DepositQuote, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &DepositQuote{
		ProductID:        product.ID,
		TotalAmount:      product.SalePrice,
		MinimumDeposit:   domain.MinimumDeposit(product.SalePrice).Round(2),
		SuggestedDeposit: domain.SuggestedDeposit(product.SalePrice),
	}, nil
}
