package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGOURI", "mongodb://localhost:27017")
	t.Setenv("FRESH_DECAY_HOURS", "")
	t.Setenv("PORT", "")
	t.Setenv("MONGO_DB", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.FreshDecayHours)
	assert.Equal(t, 3*time.Hour, cfg.DecayThreshold())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "asafishdb", cfg.DatabaseName)
}

func TestLoadDecayOverride(t *testing.T) {
	t.Setenv("MONGOURI", "mongodb://localhost:27017")
	t.Setenv("FRESH_DECAY_HOURS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.FreshDecayHours)
	assert.Equal(t, 5*time.Hour, cfg.DecayThreshold())
}

func TestLoadRejectsBadDecay(t *testing.T) {
	t.Setenv("MONGOURI", "mongodb://localhost:27017")

	for _, v := range []string{"abc", "0", "-2"} {
		t.Setenv("FRESH_DECAY_HOURS", v)
		_, err := Load()
		assert.Error(t, err, "FRESH_DECAY_HOURS=%s", v)
	}
}

func TestLoadRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGOURI", "")
	_, err := Load()
	assert.Error(t, err)
}
