package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/andresuchdata/joyeria/backend-go/internal/app"
	"github.com/andresuchdata/joyeria/backend-go/internal/config"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/joyeria/backend-go/internal/service"
	"github.com/andresuchdata/joyeria/backend-go/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func loadConfig(c *cli.Context) *config.Config {
	cfg := config.Load()
	if url := c.String("db-url"); url != "" {
		cfg.Database.URL = url
		// pgx parses both URL and key/value DSNs; use it for ad hoc URLs.
		cfg.Database.Driver = "pgx"
	}
	return cfg
}

func initApp(c *cli.Context) error {
	cfg := loadConfig(c)
	logger.Setup(cfg.LogLevel, cfg.Server.Mode)

	a, err := app.New(c.Context, cfg)
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, ctxKey{}, a)
	return nil
}

func closeApp(c *cli.Context) error {
	if a, ok := c.Context.Value(ctxKey{}).(*app.App); ok && a != nil {
		a.Close()
	}
	return nil
}

func appFrom(c *cli.Context) *app.App {
	return c.Context.Value(ctxKey{}).(*app.App)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	cliApp := &cli.App{
		Name:  "seed",
		Usage: "Manage the joyeria database: migrations, demo data and imports",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply or roll back schema migrations",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "Apply all pending migrations",
						Action: func(c *cli.Context) error {
							return postgres.MigrateUp(loadConfig(c).Database.MigrationURL())
						},
					},
					{
						Name:  "down",
						Usage: "Roll back the latest migrations",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Value: 1, Usage: "Number of migrations to roll back"},
						},
						Action: func(c *cli.Context) error {
							return postgres.MigrateDown(loadConfig(c).Database.MigrationURL(), c.Int("steps"))
						},
					},
				},
			},
			{
				Name:   "demo",
				Usage:  "Seed sample products, sales, plans, reservations and expenses",
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					return seedDemo(c.Context, appFrom(c))
				},
			},
			{
				Name:  "import",
				Usage: "Import a CSV or XLSX product catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path to the catalog file",
						Required: true,
						EnvVars:  []string{"CATALOG_FILE"},
					},
				},
				Before: initApp,
				After:  closeApp,
				Action: runImport,
			},
			{
				Name:   "sweep",
				Usage:  "Expire past-due installments, plans and reservations once",
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					result, err := appFrom(c).Sweeper.RunOnce(c.Context)
					if err != nil {
						return err
					}
					log.Printf("Sweep done: installments=%d plans=%d reservations=%d skipped=%t",
						result.Installments, result.Plans, result.Reservations, result.Skipped)
					return nil
				},
			},
			{
				Name:  "user",
				Usage: "Create an admin user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "name", Value: "Administrador"},
				},
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					user, err := appFrom(c).Auth.CreateUser(c.Context, c.String("email"), c.String("password"), c.String("name"), service.RoleAdmin)
					if err != nil {
						return fmt.Errorf("failed to create user: %w", err)
					}
					log.Printf("Created admin %s (%s)", user.Email, user.ID)
					return nil
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runImport(c *cli.Context) error {
	path := c.String("file")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	report, err := appFrom(c).Inventory.ImportCatalog(c.Context, filepath.Base(path), f, nil)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	log.Printf("Imported %s: created=%d updated=%d errors=%d", report.File, report.Created, report.Updated, len(report.Errors))
	for _, rowErr := range report.Errors {
		log.Printf("  line %d: %s", rowErr.Line, rowErr.Message)
	}
	return nil
}
