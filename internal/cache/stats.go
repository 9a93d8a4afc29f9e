package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	statsKeyPrefix  = "stats:"
	dashboardKey    = statsKeyPrefix + "dashboard"
	summaryKeyBase  = statsKeyPrefix + "summary"
	defaultStatsTTL = time.Minute
)

// StatsCache stores computed dashboard and statistics payloads. Any write
// to sales, products, expenses, plans or reservations must call
// InvalidateAll.
type StatsCache interface {
	GetDashboard(ctx context.Context) (*domain.Dashboard, bool, error)
	SetDashboard(ctx context.Context, dashboard *domain.Dashboard) error
	GetStatistics(ctx context.Context, filter domain.StatsFilter) (*domain.Statistics, bool, error)
	SetStatistics(ctx context.Context, filter domain.StatsFilter, stats *domain.Statistics) error
	InvalidateAll(ctx context.Context) error
}

type redisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopStatsCache struct{}

// NewStatsCache returns a Redis-backed cache, or a no-op cache when client
// is nil.
func NewStatsCache(client *redis.Client, ttl time.Duration) StatsCache {
	if client == nil {
		return &noopStatsCache{}
	}
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &redisStatsCache{client: client, ttl: ttl}
}

func NewNoopStatsCache() StatsCache {
	return &noopStatsCache{}
}

func (c *redisStatsCache) GetDashboard(ctx context.Context) (*domain.Dashboard, bool, error) {
	var d domain.Dashboard
	ok, err := c.get(ctx, dashboardKey, &d)
	if !ok || err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

func (c *redisStatsCache) SetDashboard(ctx context.Context, dashboard *domain.Dashboard) error {
	return c.set(ctx, dashboardKey, dashboard)
}

func (c *redisStatsCache) GetStatistics(ctx context.Context, filter domain.StatsFilter) (*domain.Statistics, bool, error) {
	var s domain.Statistics
	ok, err := c.get(ctx, buildSummaryKey(filter), &s)
	if !ok || err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

func (c *redisStatsCache) SetStatistics(ctx context.Context, filter domain.StatsFilter, stats *domain.Statistics) error {
	return c.set(ctx, buildSummaryKey(filter), stats)
}

func (c *redisStatsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, statsKeyPrefix, scanBatchSize)
}

func (c *redisStatsCache) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("decode %s cache: %w", key, err)
	}
	return true, nil
}

func (c *redisStatsCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s cache: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopStatsCache) GetDashboard(ctx context.Context) (*domain.Dashboard, bool, error) {
	return nil, false, nil
}

func (n *noopStatsCache) SetDashboard(ctx context.Context, dashboard *domain.Dashboard) error {
	return nil
}

func (n *noopStatsCache) GetStatistics(ctx context.Context, filter domain.StatsFilter) (*domain.Statistics, bool, error) {
	return nil, false, nil
}

func (n *noopStatsCache) SetStatistics(ctx context.Context, filter domain.StatsFilter, stats *domain.Statistics) error {
	return nil
}

func (n *noopStatsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildSummaryKey(filter domain.StatsFilter) string {
	var parts []string
	if filter.From != nil {
		parts = append(parts, "from="+filter.From.UTC().Format(time.RFC3339))
	}
	if filter.To != nil {
		parts = append(parts, "to="+filter.To.UTC().Format(time.RFC3339))
	}

	if len(parts) == 0 {
		return summaryKeyBase + ":default"
	}

	raw := strings.Join(parts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", summaryKeyBase, hex.EncodeToString(hash[:]))
}
