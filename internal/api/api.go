// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/api/handlers"
	"github.com/andresuchdata/joyeria/backend-go/internal/api/middleware"
	"github.com/andresuchdata/joyeria/backend-go/internal/events"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Auth         handlers.AuthService
	Tokens       middleware.TokenVerifier
	Products     handlers.ProductService
	Deposits     handlers.DepositQuoter
	Sales        handlers.SaleService
	Plans        handlers.PlanService
	Reservations handlers.ReservationService
	Expenses     handlers.ExpenseService
	Stats        handlers.StatsService
	Audit        handlers.AuditService
	Broker       events.Broker
}

type Options struct {
	AllowedOrigins []string
	ServiceName    string
	MaxUploadMB    int
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	health := handlers.Health(opts.ServiceName)
	router.GET("/health", health)

	apiGroup := router.Group("/api/v1")
	apiGroup.GET("/health", health)
	apiGroup.POST("/ai/extract", handlers.Extract)

	if services == nil {
		return router
	}

	authHandler := handlers.NewAuthHandler(services.Auth)
	apiGroup.POST("/auth/signup", authHandler.SignUp)
	apiGroup.POST("/auth/signin", authHandler.SignIn)

	secured := apiGroup.Group("")
	secured.Use(middleware.RequireAuth(services.Tokens))

	secured.POST("/auth/signout", authHandler.SignOut)
	secured.GET("/auth/me", authHandler.Me)

	if services.Products != nil {
		productHandler := handlers.NewProductHandler(services.Products, services.Deposits, opts.MaxUploadMB)
		productGroup := secured.Group("/products")
		{
			productGroup.GET("", productHandler.List)
			productGroup.POST("", productHandler.Create)
			productGroup.POST("/import", productHandler.Import)
			productGroup.GET("/:id", productHandler.Get)
			productGroup.PUT("/:id", productHandler.Update)
			productGroup.DELETE("/:id", productHandler.Delete)
			productGroup.POST("/:id/image", productHandler.UploadImage)
			if services.Deposits != nil {
				productGroup.GET("/:id/deposit", productHandler.Deposit)
			}
		}
	}

	if services.Sales != nil {
		saleHandler := handlers.NewSaleHandler(services.Sales)
		saleGroup := secured.Group("/sales")
		{
			saleGroup.GET("", saleHandler.List)
			saleGroup.POST("", saleHandler.Create)
			saleGroup.GET("/export", saleHandler.Export)
			saleGroup.GET("/:id", saleHandler.Get)
		}
	}

	if services.Plans != nil {
		planHandler := handlers.NewPlanHandler(services.Plans)
		planGroup := secured.Group("/plans")
		{
			planGroup.GET("", planHandler.List)
			planGroup.POST("", planHandler.Create)
			planGroup.GET("/:id", planHandler.Get)
			planGroup.POST("/:id/cancel", planHandler.Cancel)
		}
		secured.POST("/installments/:id/payments", planHandler.RegisterPayment)
	}

	if services.Reservations != nil {
		reservationHandler := handlers.NewReservationHandler(services.Reservations)
		reservationGroup := secured.Group("/reservations")
		{
			reservationGroup.GET("", reservationHandler.List)
			reservationGroup.POST("", reservationHandler.Create)
			reservationGroup.GET("/:id", reservationHandler.Get)
			reservationGroup.POST("/:id/complete", reservationHandler.Complete)
			reservationGroup.POST("/:id/cancel", reservationHandler.Cancel)
		}
	}

	if services.Expenses != nil {
		expenseHandler := handlers.NewExpenseHandler(services.Expenses)
		expenseGroup := secured.Group("/expenses")
		{
			expenseGroup.GET("", expenseHandler.List)
			expenseGroup.POST("", expenseHandler.Create)
			expenseGroup.PUT("/:id", expenseHandler.Update)
			expenseGroup.DELETE("/:id", expenseHandler.Delete)
		}
	}

	if services.Stats != nil {
		statsHandler := handlers.NewStatsHandler(services.Stats, services.Audit)
		secured.GET("/stats/dashboard", statsHandler.Dashboard)
		secured.GET("/stats/summary", statsHandler.Summary)
		if services.Audit != nil {
			secured.GET("/audit", statsHandler.Audit)
		}
	}

	if services.Broker != nil {
		secured.GET("/events", handlers.NewEventsHandler(services.Broker).Stream)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	return corsConfig
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
