package config

import (
	"testing"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_JWTSecretHasNoUsableDefault(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg := Load()
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)

	_, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	assert.ErrorIs(t, err, auth.ErrWeakSecret)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "joyeria", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=joyeria sslmode=disable", c.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/joyeria?sslmode=disable", c.MigrationURL())

	c.URL = "postgres://elsewhere/joyeria"
	assert.Equal(t, c.URL, c.DSN())
	assert.Equal(t, c.URL, c.MigrationURL())
}
