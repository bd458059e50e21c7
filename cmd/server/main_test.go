package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/backend/internal/config"
	"comanda/backend/internal/store"
	"comanda/backend/internal/store/memory"
)

func validConfig() config.Config {
	return config.Config{
		Port:          "8080",
		Env:           "development",
		AllowedOrigin: "http://127.0.0.1:3000",
		ExportDir:     "reports",
	}
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	require.NoError(t, validateConfig(validConfig()))
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"port not numeric":    func(c *config.Config) { c.Port = "http" },
		"port out of range":   func(c *config.Config) { c.Port = "70000" },
		"empty origin":        func(c *config.Config) { c.AllowedOrigin = " " },
		"wildcard production": func(c *config.Config) { c.Env = "production"; c.AllowedOrigin = "*" },
		"negative redis db":   func(c *config.Config) { c.RedisDB = -1 },
		"empty export dir":    func(c *config.Config) { c.ExportDir = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestOpenBackendDefaultsToSeededMemory(t *testing.T) {
	cfg := validConfig()
	cfg.SeedDemoData = true

	backend, err := openBackend(context.Background(), cfg)
	require.NoError(t, err)
	require.IsType(t, &memory.Store{}, backend)

	payload, err := backend.Get(context.Background(), store.KeyProducts)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Coca Cola Lata")
}

func TestOpenBackendUnseededMemoryIsEmpty(t *testing.T) {
	backend, err := openBackend(context.Background(), validConfig())
	require.NoError(t, err)

	_, err = backend.Get(context.Background(), store.KeyProducts)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOpenBackendFallsBackWhenRedisUnreachable(t *testing.T) {
	cfg := validConfig()
	cfg.RedisAddr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	backend, err := openBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, backend)
}
