package service

import (
	"context"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/cache"
	"github.com/andresuchdata/joyeria/backend-go/internal/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notifier tells open views and the statistics cache that a table
// changed. Failures are logged and never fail the write that caused them.
type Notifier struct {
	broker events.Broker
	stats  cache.StatsCache
	now    func() time.Time
}

// NewNotifier accepts nil for either collaborator.
func NewNotifier(broker events.Broker, stats cache.StatsCache) *Notifier {
	if stats == nil {
		stats = cache.NewNoopStatsCache()
	}
	return &Notifier{broker: broker, stats: stats, now: time.Now}
}

func (n *Notifier) Changed(ctx context.Context, table, action, id string) {
	if n == nil {
		return
	}
	if err := n.stats.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Str("table", table).Msg("Failed to invalidate statistics cache")
	}
	if n.broker == nil {
		return
	}
	event := events.Event{Table: table, Action: action, ID: id, At: n.now().UTC()}
	if err := n.broker.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("table", table).Str("id", id).Msg("Failed to publish change event")
	}
}

func newID() string {
	return uuid.NewString()
}
