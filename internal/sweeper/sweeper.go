// Package sweeper persists due-date expiry of installments, payment plans
// and reservations. Reads already derive expiry on the fly; the sweeper
// makes the stored status catch up exactly once.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/cache"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/events"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	lockKey         = "lock:sweeper"
	defaultInterval = 15 * time.Minute
)

// Locker serializes sweeps across replicas. Obtain returns a release func,
// or ok=false when another replica holds the lock.
type Locker interface {
	Obtain(ctx context.Context, ttl time.Duration) (release func(), ok bool, err error)
}

// Result counts the rows moved to expired by one sweep.
type Result struct {
	Installments int64 `json:"installments"`
	Plans        int64 `json:"plans"`
	Reservations int64 `json:"reservations"`
	Skipped      bool  `json:"skipped,omitempty"`
}

type Sweeper struct {
	repo     repository.SweepRepository
	broker   events.Broker
	stats    cache.StatsCache
	locker   Locker
	interval time.Duration
	now      func() time.Time
}

type Option func(*Sweeper)

func WithBroker(b events.Broker) Option {
	return func(s *Sweeper) { s.broker = b }
}

func WithStatsCache(c cache.StatsCache) Option {
	return func(s *Sweeper) { s.stats = c }
}

func WithLocker(l Locker) Option {
	return func(s *Sweeper) { s.locker = l }
}

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func New(repo repository.SweepRepository, opts ...Option) *Sweeper {
	s := &Sweeper{
		repo:     repo,
		stats:    cache.NewNoopStatsCache(),
		interval: defaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("Sweeper started")
	for {
		if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Sweep failed")
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("Sweeper stopped")
			return
		case <-time.After(s.interval):
		}
	}
}

// RunOnce expires everything past due as of today. The three tables are
// swept concurrently; a failure in one does not roll back the others.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, error) {
	if s.locker != nil {
		release, ok, err := s.locker.Obtain(ctx, s.interval)
		if err != nil {
			return Result{}, fmt.Errorf("obtain sweeper lock: %w", err)
		}
		if !ok {
			log.Debug().Msg("Sweep skipped, another replica holds the lock")
			return Result{Skipped: true}, nil
		}
		defer release()
	}

	today := domain.StartOfDay(s.now())
	var res Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.ExpireInstallments(gctx, today)
		res.Installments = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.ExpirePlans(gctx, today)
		res.Plans = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.ExpireReservations(gctx, today)
		res.Reservations = n
		return err
	})
	err := g.Wait()

	s.announce(ctx, events.TableInstallments, res.Installments)
	s.announce(ctx, events.TablePlans, res.Plans)
	s.announce(ctx, events.TableReservations, res.Reservations)
	if res.Installments+res.Plans+res.Reservations > 0 {
		if cerr := s.stats.InvalidateAll(ctx); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to invalidate statistics cache after sweep")
		}
		log.Info().
			Int64("installments", res.Installments).
			Int64("plans", res.Plans).
			Int64("reservations", res.Reservations).
			Msg("Sweep expired rows")
	}

	return res, err
}

func (s *Sweeper) announce(ctx context.Context, table string, n int64) {
	if n == 0 || s.broker == nil {
		return
	}
	event := events.Event{Table: table, Action: events.ActionUpdate, At: s.now().UTC()}
	if err := s.broker.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("table", table).Msg("Failed to publish sweep event")
	}
}

// RedisLocker holds the sweep lock in Redis through redislock.
type RedisLocker struct {
	client *redislock.Client
	key    string
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), key: lockKey}
}

func (l *RedisLocker) Obtain(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	lock, err := l.client.Obtain(ctx, l.key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Msg("Failed to release sweeper lock")
		}
	}, true, nil
}
