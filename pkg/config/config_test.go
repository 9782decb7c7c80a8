package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("valores por defecto", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "local", cfg.Storage.Driver)
		assert.False(t, cfg.Inventory.CreditBack)
		assert.False(t, cfg.Alert.Enabled())
		assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	})

	t.Run("variables de entorno", func(t *testing.T) {
		t.Setenv("INVENTORY_CREDIT_BACK", "true")
		t.Setenv("HTTP_PORT", "9090")
		t.Setenv("ALERT_EMAIL_TO", "compras@imanod.co, gerencia@imanod.co")
		t.Setenv("SMTP_HOST", "smtp.imanod.co")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Inventory.CreditBack)
		assert.Equal(t, 9090, cfg.HTTP.Port)
		assert.Equal(t, []string{"compras@imanod.co", "gerencia@imanod.co"}, cfg.Alert.To)
		assert.True(t, cfg.Alert.Enabled())
	})

	t.Run("gcs sin bucket", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "gcs")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "imanod", Password: "p@ss:word", DBName: "imanod", SSLMode: "disable"}
	assert.Equal(t, "postgres://imanod:p%40ss%3Aword@db:5432/imanod?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())
}
