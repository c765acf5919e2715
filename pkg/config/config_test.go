package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/branch-pos-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 10*time.Second, cfg.Monitor.RefreshInterval)
	assert.Equal(t, 5, cfg.Auth.MaxFailedLogins)
	assert.NotEmpty(t, cfg.JWT.Secret, "en development se usa un secreto local")
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOW_STOCK_REFRESH_INTERVAL", "30s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.Monitor.RefreshInterval)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestLoad_ProduccionSinSecretoFalla(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapaContrasena(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss:/w", DBName: "pos", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%3A%2Fw@db:5432/pos?sslmode=disable", c.DSN())
}

func TestAppConfig_LocationInvalidaUsaUTC(t *testing.T) {
	assert.Equal(t, time.UTC, config.AppConfig{Timezone: "No/Existe"}.Location())
}
