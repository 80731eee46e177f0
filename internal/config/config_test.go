package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sudice/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 2000, cfg.ObsFactor)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, int64(1), cfg.Seed)
}

func TestFromEnv_Overlay(t *testing.T) {
	t.Setenv("SUDICE_OBS_FACTOR", "500")
	t.Setenv("SUDICE_WORKERS", "4")
	t.Setenv("SUDICE_SEED", "99")

	cfg := config.FromEnv(config.Default())
	assert.Equal(t, 500, cfg.ObsFactor)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, int64(99), cfg.Seed)
}

func TestFromEnv_IgnoresUnsetAndUnparsable(t *testing.T) {
	t.Setenv("SUDICE_WORKERS", "not-a-number")

	base := config.Default()
	cfg := config.FromEnv(base)
	assert.Equal(t, base.ObsFactor, cfg.ObsFactor)
	assert.Equal(t, base.Workers, cfg.Workers)
	assert.Equal(t, base.Seed, cfg.Seed)
}
