package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dashboard is the landing-page snapshot.
type Dashboard struct {
	Products            int             `json:"products" db:"products"`
	AvailableProducts   int             `json:"available_products" db:"available_products"`
	StockUnits          int             `json:"stock_units" db:"stock_units"`
	InventoryValue      decimal.Decimal `json:"inventory_value" db:"inventory_value"`
	SalesToday          int             `json:"sales_today" db:"sales_today"`
	SalesMonth          int             `json:"sales_month" db:"sales_month"`
	RevenueMonth        decimal.Decimal `json:"revenue_month" db:"revenue_month"`
	ProfitMonth         decimal.Decimal `json:"profit_month" db:"profit_month"`
	ExpensesMonth       decimal.Decimal `json:"expenses_month" db:"expenses_month"`
	ActiveReservations  int             `json:"active_reservations" db:"active_reservations"`
	OpenPlans           int             `json:"open_plans" db:"open_plans"`
	OverdueInstallments int             `json:"overdue_installments" db:"overdue_installments"`
	GeneratedAt         time.Time       `json:"generated_at" db:"-"`
}

type StatsFilter struct {
	From *time.Time
	To   *time.Time
}

type MonthlySales struct {
	Month  string          `json:"month" db:"month"`
	Sales  decimal.Decimal `json:"sales" db:"sales"`
	Profit decimal.Decimal `json:"profit" db:"profit"`
	Count  int             `json:"count" db:"count"`
}

type CategorySales struct {
	Category string          `json:"category" db:"category"`
	Quantity int             `json:"quantity" db:"quantity"`
	Sales    decimal.Decimal `json:"sales" db:"sales"`
	Profit   decimal.Decimal `json:"profit" db:"profit"`
}

type CategoryExpense struct {
	Category string          `json:"category" db:"category"`
	Amount   decimal.Decimal `json:"amount" db:"amount"`
}

// Statistics is the aggregate report behind the statistics page.
type Statistics struct {
	ByMonth            []MonthlySales    `json:"by_month"`
	ByCategory         []CategorySales   `json:"by_category"`
	ExpensesByCategory []CategoryExpense `json:"expenses_by_category"`
	TotalSales         decimal.Decimal   `json:"total_sales"`
	TotalProfit        decimal.Decimal   `json:"total_profit"`
	TotalExpenses      decimal.Decimal   `json:"total_expenses"`
	NetProfit          decimal.Decimal   `json:"net_profit"`
}

// Totalize fills the totals from the breakdowns.
func (s *Statistics) Totalize() {
	s.TotalSales, s.TotalProfit, s.TotalExpenses = decimal.Zero, decimal.Zero, decimal.Zero
	for _, m := range s.ByMonth {
		s.TotalSales = s.TotalSales.Add(m.Sales)
		s.TotalProfit = s.TotalProfit.Add(m.Profit)
	}
	for _, e := range s.ExpensesByCategory {
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
	}
	s.NetProfit = s.TotalProfit.Sub(s.TotalExpenses)
}
