package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Audit entity types.
const (
	AuditProduct     = "product"
	AuditSale        = "sale"
	AuditExpense     = "expense"
	AuditReservation = "reservation"
	AuditPlan        = "payment_plan"
	AuditLogin       = "login"
)

var auditEntityTypes = map[string]bool{
	AuditProduct:     true,
	AuditSale:        true,
	AuditExpense:     true,
	AuditReservation: true,
	AuditPlan:        true,
	AuditLogin:       true,
}

func IsAuditEntityType(s string) bool {
	return auditEntityTypes[s]
}

// AuditEntry is one row of the audit read model, synthesized from the
// entity tables.
type AuditEntry struct {
	EntityType  string           `json:"entity_type" db:"entity_type"`
	EntityID    string           `json:"entity_id" db:"entity_id"`
	Action      string           `json:"action" db:"action"`
	Description string           `json:"description" db:"description"`
	Amount      *decimal.Decimal `json:"amount,omitempty" db:"amount"`
	UserID      *string          `json:"user_id,omitempty" db:"user_id"`
	UserEmail   *string          `json:"user_email,omitempty" db:"user_email"`
	OccurredAt  time.Time        `json:"occurred_at" db:"occurred_at"`
}

type AuditFilter struct {
	EntityTypes []string
	From        *time.Time
	To          *time.Time
	Limit       int
}
