package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustlens/trustlens/internal/history"
	"github.com/trustlens/trustlens/internal/oracle"
	"github.com/trustlens/trustlens/internal/webclient"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, oracle.ClassifierKeyword, cfg.Oracles.Classifier)
	assert.Equal(t, oracle.IdentityRandom, cfg.Oracles.Identity)
	assert.Equal(t, webclient.ClientNetHTTP, cfg.WebClient.Client)
	assert.Equal(t, history.DriverSQLite, cfg.History.Driver)
	assert.Equal(t, 5000, cfg.Engine.MaxTextLength)
}

func TestDefaultConfig_IndependentCopies(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	a.Engine.Behaviour.Keywords[0] = "changed"
	assert.Equal(t, "free", b.Engine.Behaviour.Keywords[0])
}

func TestConfigValidate(t *testing.T) {
	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrInvalidAppConfig)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero concurrency", func(c *Config) { c.Batch.MaxConcurrency = 0 }},
		{"zero batch size", func(c *Config) { c.Batch.MaxURLs = 0 }},
		{"negative timeout", func(c *Config) { c.FetchTimeout = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidAppConfig)
		})
	}
}

func TestOpen_MemoryHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.History = history.Config{Driver: history.DriverMemory}
	cfg.Oracles.Identity = oracle.IdentityStatic

	svc, err := Open(t.Context(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	assert.Same(t, cfg, svc.Config())
}

func TestOpen_UnknownOracle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.History = history.Config{Driver: history.DriverMemory}
	cfg.Oracles.Classifier = "does-not-exist"

	_, err := Open(t.Context(), cfg, nil)
	assert.Error(t, err)
}
