// Package events carries table change notifications from writers to open
// client streams.
package events

import (
	"context"
	"time"
)

// Tables that publish change events.
const (
	TableProducts     = "products"
	TableSales        = "sales"
	TablePlans        = "payment_plans"
	TableInstallments = "installments"
	TableReservations = "reservations"
	TableExpenses     = "expenses"
)

const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event announces that a row changed. Clients reload rather than patch,
// so the payload is only the row identity.
type Event struct {
	Table  string    `json:"table"`
	Action string    `json:"action"`
	ID     string    `json:"id,omitempty"`
	At     time.Time `json:"at"`
}

// Broker fans change events out to subscribers. Subscribe with no tables
// receives every event. The returned cancel func releases the
// subscription and closes the channel.
type Broker interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, tables ...string) (<-chan Event, func())
	Close() error
}

func matches(tables map[string]bool, table string) bool {
	return len(tables) == 0 || tables[table]
}

func tableSet(tables []string) map[string]bool {
	set := make(map[string]bool, len(tables))
	for _, t := range tables {
		if t != "" {
			set[t] = true
		}
	}
	return set
}
