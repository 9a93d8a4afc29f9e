package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/app"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

type demoProduct struct {
	name     string
	category string
	supplier string
	purchase int64
	sale     int64
	stock    int
}

var demoProducts = []demoProduct{
	{"Anillo de oro 18k con zafiro", "anillos", "Orfebrería Medina", 4200, 7800, 3},
	{"Collar de plata 925 con perlas", "collares", "Platería del Centro", 1100, 2400, 6},
	{"Aretes de oro blanco", "aretes", "Orfebrería Medina", 1800, 3500, 4},
	{"Pulsera tejida de plata", "pulseras", "Platería del Centro", 450, 950, 10},
	{"Dije corazón de oro rosa", "dijes", "Joyas Luna", 900, 1750, 5},
}

// seedDemo fills an empty database with a small but complete data set. It
// refuses to run when products already exist.
func seedDemo(ctx context.Context, a *app.App) error {
	_, total, err := a.Inventory.ListProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return err
	}
	if total > 0 {
		log.Printf("Database already has %d products, skipping demo data", total)
		return nil
	}

	today := domain.StartOfDay(time.Now())
	products := make([]*domain.Product, 0, len(demoProducts))
	for _, p := range demoProducts {
		category, supplier := p.category, p.supplier
		product, err := a.Inventory.CreateProduct(ctx, domain.CreateProductInput{
			Name:          p.name,
			PurchasePrice: decimal.NewFromInt(p.purchase),
			SalePrice:     decimal.NewFromInt(p.sale),
			Stock:         p.stock,
			Category:      &category,
			Supplier:      &supplier,
		}, nil)
		if err != nil {
			return fmt.Errorf("failed to create product %q: %w", p.name, err)
		}
		products = append(products, product)
	}
	log.Printf("Created %d products", len(products))

	cash := "efectivo"
	customer := "María López"
	sale, err := a.Sales.RecordSale(ctx, domain.RecordSaleInput{
		ProductID:     products[0].ID,
		Quantity:      1,
		UnitPrice:     products[0].SalePrice,
		Customer:      &customer,
		PaymentMethod: &cash,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}

	if _, err := a.Sales.RecordSale(ctx, domain.RecordSaleInput{
		ProductID:     products[3].ID,
		Quantity:      2,
		UnitPrice:     products[3].SalePrice,
		PaymentMethod: &cash,
	}, nil); err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}

	plan, err := a.Plans.CreatePlan(ctx, domain.CreatePlanInput{
		SaleID:           sale.ID,
		InstallmentCount: 3,
		DueDate:          domain.NewDate(today.AddDate(0, 0, 90)),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to create payment plan: %w", err)
	}
	if _, err := a.Plans.RegisterPayment(ctx, plan.Installments[0].ID, domain.RegisterPaymentInput{
		Amount:        plan.Installments[0].Amount,
		PaymentMethod: &cash,
	}); err != nil {
		return fmt.Errorf("failed to register payment: %w", err)
	}

	phone := "555-0142"
	if _, err := a.Reservations.CreateReservation(ctx, domain.CreateReservationInput{
		ProductID:     products[2].ID,
		CustomerName:  "Lucía Fernández",
		Phone:         &phone,
		DepositAmount: products[2].SalePrice.Mul(decimal.NewFromFloat(0.2)).Round(2),
		DueDate:       domain.NewDate(today.AddDate(0, 0, 30)),
	}, nil); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	for _, e := range []struct {
		concept  string
		category string
		amount   int64
	}{
		{"Renta del local", "renta", 8000},
		{"Bolsas y estuches", "empaque", 650},
	} {
		category := e.category
		if _, err := a.Expenses.CreateExpense(ctx, domain.ExpenseInput{
			Concept:  e.concept,
			Amount:   decimal.NewFromInt(e.amount),
			Category: &category,
		}, nil); err != nil {
			return fmt.Errorf("failed to create expense %q: %w", e.concept, err)
		}
	}

	log.Printf("Demo data ready: sale %s with plan %s, one reservation, two expenses", sale.ID, plan.ID)
	return nil
}
