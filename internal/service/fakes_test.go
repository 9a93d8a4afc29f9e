package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository"
)

// In-memory repositories. They enforce the same uniqueness and stock
// rules as the PostgreSQL schema so service behavior can be tested
// without a database.

type fakeProducts struct {
	mu   sync.Mutex
	rows map[string]*domain.Product
}

func newFakeProducts(products ...*domain.Product) *fakeProducts {
	f := &fakeProducts{rows: map[string]*domain.Product{}}
	for _, p := range products {
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakeProducts) Create(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) List(_ context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Product
	for _, p := range f.rows {
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (f *fakeProducts) Update(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeProducts) UpsertByName(_ context.Context, p *domain.Product) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if strings.EqualFold(existing.Name, p.Name) {
			existing.PurchasePrice = p.PurchasePrice
			existing.SalePrice = p.SalePrice
			existing.Stock = p.Stock
			existing.Available = p.Available
			p.ID = existing.ID
			return false, nil
		}
	}
	cp := *p
	f.rows[p.ID] = &cp
	return true, nil
}

func (f *fakeProducts) stock(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].Stock
}

type fakeSales struct {
	mu       sync.Mutex
	products *fakeProducts
	rows     []*domain.Sale
}

func (f *fakeSales) Create(_ context.Context, s *domain.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products.mu.Lock()
	defer f.products.mu.Unlock()

	p, ok := f.products.rows[s.ProductID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Stock < s.Quantity {
		return domain.ErrInsufficientStock
	}
	p.Stock -= s.Quantity
	if p.Stock == 0 {
		p.Available = false
	}
	cp := *s
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeSales) GetByID(_ context.Context, id string) (*domain.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.rows {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("sale %s: %w", id, domain.ErrNotFound)
}

func (f *fakeSales) List(_ context.Context, filter domain.SaleFilter) ([]*domain.Sale, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page := filter.Page.Normalize(50)
	start := page.Offset()
	if start > len(f.rows) {
		start = len(f.rows)
	}
	end := start + page.PageSize
	if end > len(f.rows) {
		end = len(f.rows)
	}
	out := make([]*domain.Sale, 0, end-start)
	for _, s := range f.rows[start:end] {
		cp := *s
		out = append(out, &cp)
	}
	return out, len(f.rows), nil
}

type fakePlans struct {
	mu    sync.Mutex
	plans map[string]*domain.PaymentPlan
}

func newFakePlans() *fakePlans {
	return &fakePlans{plans: map[string]*domain.PaymentPlan{}}
}

func clonePlan(p *domain.PaymentPlan) *domain.PaymentPlan {
	cp := *p
	cp.Installments = make([]*domain.Installment, len(p.Installments))
	for i, inst := range p.Installments {
		c := *inst
		cp.Installments[i] = &c
	}
	return &cp
}

func (f *fakePlans) CreateWithInstallments(_ context.Context, plan *domain.PaymentPlan, installments []*domain.Installment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.plans {
		if p.SaleID == plan.SaleID {
			return fmt.Errorf("plan for sale %s: %w", plan.SaleID, domain.ErrAlreadyExists)
		}
	}
	for _, inst := range installments {
		inst.PlanID = plan.ID
	}
	plan.Installments = installments
	plan.CreatedAt = time.Now()
	f.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (f *fakePlans) GetByID(_ context.Context, id string) (*domain.PaymentPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	return clonePlan(p), nil
}

func (f *fakePlans) List(_ context.Context, filter domain.PlanFilter) ([]*domain.PaymentPlan, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.PaymentPlan
	for _, p := range f.plans {
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		out = append(out, clonePlan(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

// UpdateInstallment mutates a copy and stores it only when mutate
// succeeds, like a rolled-back transaction.
func (f *fakePlans) UpdateInstallment(_ context.Context, installmentID string, mutate repository.InstallmentMutation) (*domain.PaymentPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.plans {
		for i, inst := range p.Installments {
			if inst.ID != installmentID {
				continue
			}
			working := clonePlan(p)
			if err := mutate(working, working.Installments[i]); err != nil {
				return nil, err
			}
			f.plans[id] = clonePlan(working)
			return working, nil
		}
	}
	return nil, fmt.Errorf("installment %s: %w", installmentID, domain.ErrNotFound)
}

func (f *fakePlans) UpdateStatus(_ context.Context, id string, from []domain.PlanStatus, to domain.PlanStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, s := range from {
		if p.Status == s {
			p.Status = to
			return nil
		}
	}
	return domain.ErrInvalidTransition
}

type fakeReservations struct {
	mu   sync.Mutex
	rows []*domain.Reservation
	now  func() time.Time
}

func (f *fakeReservations) Create(_ context.Context, r *domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	today := domain.StartOfDay(f.now())
	for _, existing := range f.rows {
		if existing.ProductID != r.ProductID || existing.Status != domain.ReservationActive {
			continue
		}
		if existing.DueDate.Before(today) {
			existing.Status = domain.ReservationExpired
			continue
		}
		return fmt.Errorf("active reservation for product %s: %w", r.ProductID, domain.ErrAlreadyExists)
	}
	r.CreatedAt = f.now()
	cp := *r
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeReservations) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
}

func (f *fakeReservations) List(_ context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Reservation
	for _, r := range f.rows {
		if filter.Status != "" && string(r.Status) != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(r.CustomerName), strings.ToLower(filter.Search)) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, id string, status domain.ReservationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID != id {
			continue
		}
		if r.Status != domain.ReservationActive {
			return domain.ErrInvalidTransition
		}
		r.Status = status
		return nil
	}
	return domain.ErrNotFound
}

func (f *fakeReservations) stored(id string) domain.ReservationStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			return r.Status
		}
	}
	return ""
}

type fakeExpenses struct {
	mu   sync.Mutex
	rows map[string]*domain.Expense
}

func (f *fakeExpenses) Create(_ context.Context, e *domain.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.rows[e.ID] = &cp
	return nil
}

func (f *fakeExpenses) GetByID(_ context.Context, id string) (*domain.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", id, domain.ErrNotFound)
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExpenses) List(_ context.Context, filter domain.ExpenseFilter) ([]*domain.Expense, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Expense
	for _, e := range f.rows {
		if filter.Category != "" && (e.Category == nil || *e.Category != filter.Category) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeExpenses) Update(_ context.Context, e *domain.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.rows[e.ID] = &cp
	return nil
}

func (f *fakeExpenses) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeUsers struct {
	mu   sync.Mutex
	rows map[string]*domain.User
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.Email == strings.ToLower(u.Email) {
			return fmt.Errorf("user %s: %w", u.Email, domain.ErrAlreadyExists)
		}
	}
	cp := *u
	cp.Email = strings.ToLower(u.Email)
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeLogins struct {
	mu     sync.Mutex
	events []domain.LoginEvent
}

func (f *fakeLogins) Record(_ context.Context, e *domain.LoginEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = int64(len(f.events) + 1)
	f.events = append(f.events, *e)
	return nil
}

type fakeStats struct {
	calls     int
	dashboard *domain.Dashboard
	monthly   []domain.MonthlySales
	category  []domain.CategorySales
	expenses  []domain.CategoryExpense
}

func (f *fakeStats) GetDashboard(_ context.Context, now time.Time) (*domain.Dashboard, error) {
	f.calls++
	d := *f.dashboard
	d.GeneratedAt = now
	return &d, nil
}

func (f *fakeStats) GetMonthlySales(context.Context, domain.StatsFilter) ([]domain.MonthlySales, error) {
	f.calls++
	return f.monthly, nil
}

func (f *fakeStats) GetCategorySales(context.Context, domain.StatsFilter) ([]domain.CategorySales, error) {
	return f.category, nil
}

func (f *fakeStats) GetExpensesByCategory(context.Context, domain.StatsFilter) ([]domain.CategoryExpense, error) {
	return f.expenses, nil
}

type fakeAudit struct {
	last domain.AuditFilter
}

func (f *fakeAudit) List(_ context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	f.last = filter
	return nil, nil
}

// fixedClock returns a clock stuck at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
