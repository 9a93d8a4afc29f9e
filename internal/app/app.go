// Package app wires configuration, infrastructure and services together
// for the binaries under cmd/.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/api"
	"github.com/andresuchdata/joyeria/backend-go/internal/auth"
	"github.com/andresuchdata/joyeria/backend-go/internal/cache"
	"github.com/andresuchdata/joyeria/backend-go/internal/config"
	"github.com/andresuchdata/joyeria/backend-go/internal/events"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/joyeria/backend-go/internal/service"
	"github.com/andresuchdata/joyeria/backend-go/internal/storage"
	"github.com/andresuchdata/joyeria/backend-go/internal/sweeper"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type App struct {
	Config *config.Config
	DB     *postgres.DB
	Redis  *redis.Client
	Broker events.Broker
	Stats  cache.StatsCache

	Inventory    *service.InventoryService
	Sales        *service.SaleService
	Plans        *service.PlanService
	Reservations *service.ReservationService
	Expenses     *service.ExpenseService
	Statistics   *service.StatsService
	Audit        *service.AuditService
	Auth         *service.AuthService
	Sweeper      *sweeper.Sweeper
}

// New connects to the database and the optional Redis and object storage
// backends, then builds every service. Redis and storage failures degrade
// to in-process fallbacks instead of aborting startup.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.Database.AutoMigrate {
		if err := postgres.MigrateUp(cfg.Database.MigrationURL()); err != nil {
			return nil, err
		}
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &App{Config: cfg, DB: db, Stats: cache.NewNoopStatsCache()}

	if cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(cfg.Cache)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		} else {
			a.Redis = client
			a.Stats = cache.NewStatsCache(client, time.Duration(cfg.Cache.StatsTTLSeconds)*time.Second)
		}
	}

	a.Broker, err = newBroker(ctx, cfg.Events, a.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}

	objects, err := storage.New(cfg.Storage)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		log.Warn().Msg("Object storage not configured, image uploads disabled")
		objects = nil
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid AUTH_JWT_SECRET: %w", err)
	}

	products := postgres.NewProductRepository(db)
	sales := postgres.NewSaleRepository(db)
	notify := service.NewNotifier(a.Broker, a.Stats)

	a.Inventory = service.NewInventoryService(products, objects, notify)
	a.Sales = service.NewSaleService(sales, products, notify)
	a.Plans = service.NewPlanService(postgres.NewPlanRepository(db), sales, notify)
	a.Reservations = service.NewReservationService(postgres.NewReservationRepository(db), products, notify)
	a.Expenses = service.NewExpenseService(postgres.NewExpenseRepository(db), notify)
	a.Statistics = service.NewStatsService(postgres.NewStatsRepository(db), a.Stats)
	a.Audit = service.NewAuditService(postgres.NewAuditRepository(db))
	a.Auth = service.NewAuthService(postgres.NewUserRepository(db), postgres.NewLoginRepository(db), tokens)

	opts := []sweeper.Option{
		sweeper.WithBroker(a.Broker),
		sweeper.WithStatsCache(a.Stats),
		sweeper.WithInterval(cfg.Sweeper.Interval),
	}
	if a.Redis != nil {
		opts = append(opts, sweeper.WithLocker(sweeper.NewRedisLocker(a.Redis)))
	}
	a.Sweeper = sweeper.New(postgres.NewSweepRepository(db), opts...)

	return a, nil
}

func newBroker(ctx context.Context, cfg config.EventsConfig, client *redis.Client) (events.Broker, error) {
	if strings.EqualFold(cfg.Backend, "redis") {
		if client == nil {
			log.Warn().Msg("Redis events backend requested without Redis, using in-memory broker")
			return events.NewMemoryBroker(), nil
		}
		broker, err := events.NewRedisBroker(ctx, client, cfg.Channel)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis broker: %w", err)
		}
		return broker, nil
	}
	return events.NewMemoryBroker(), nil
}

// Services exposes the app to the HTTP router.
func (a *App) Services() *api.Services {
	return &api.Services{
		Auth:         a.Auth,
		Tokens:       a.Auth,
		Products:     a.Inventory,
		Deposits:     a.Reservations,
		Sales:        a.Sales,
		Plans:        a.Plans,
		Reservations: a.Reservations,
		Expenses:     a.Expenses,
		Stats:        a.Statistics,
		Audit:        a.Audit,
		Broker:       a.Broker,
	}
}

func (a *App) Close() {
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close event broker")
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}
}
