package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 100.0, cfg.GateAccuracyMeters)
	assert.Equal(t, 0.014, cfg.MapSpanDegrees)
	assert.Equal(t, 1000.0, cfg.SearchRadiusMeters)
	assert.Equal(t, 30, cfg.MaxVisibleAnnotations)
	assert.Equal(t, 0.05, cfg.HeadingSmoothingFactor)
	assert.Zero(t, cfg.MaxDistanceMeters)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Minute, cfg.SessionSweepInterval)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("GATE_ACCURACY_METERS", "65")
	t.Setenv("AR_MAX_VISIBLE_ANNOTATIONS", "12")
	t.Setenv("POI_FETCH_TIMEOUT", "3s")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SESSION_TTL", "90m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 65.0, cfg.GateAccuracyMeters)
	assert.Equal(t, 12, cfg.MaxVisibleAnnotations)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	for key, value := range map[string]string{
		"GATE_ACCURACY_METERS":       "close",
		"AR_MAX_VISIBLE_ANNOTATIONS": "many",
		"POI_FETCH_TIMEOUT":          "soon",
		"SESSION_SWEEP_INTERVAL":     "often",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}
