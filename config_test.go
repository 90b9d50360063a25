package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermtape/ops"
	"qtermtape/transforms"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, transforms.DefaultAtol, cfg.Fusion.Atol)
	assert.Empty(t, cfg.Fusion.Exclude)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Draw.Decimals)
	require.NoError(t, cfg.Validate())
}

func TestParseConfig_KeepsOmittedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseConfig([]byte("fusion:\n  exclude: [RZ, PhaseShift]\n"), &cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"RZ", "PhaseShift"}, cfg.Fusion.Exclude)
	assert.Equal(t, transforms.DefaultAtol, cfg.Fusion.Atol)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Draw.Decimals)
}

func TestParseConfig_Full(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseConfig([]byte(`
fusion:
  atol: 1e-6
  exclude: [RX]
log:
  level: debug
draw:
  decimals: -1
`), &cfg)
	require.NoError(t, err)

	assert.Equal(t, 1e-6, cfg.Fusion.Atol)
	assert.Equal(t, []string{"RX"}, cfg.Fusion.Exclude)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, -1, cfg.Draw.Decimals)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"negative atol", "fusion:\n  atol: -0.1\n", "fusion.atol"},
		{"unknown gate", "fusion:\n  exclude: [Bogus]\n", "unknown gate"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"too many decimals", "draw:\n  decimals: 40\n", "draw.decimals"},
		{"malformed", "fusion: [", "parse config"},
		{"wrong type", "fusion:\n  atol: tiny\n", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := ParseConfig([]byte(tt.yaml), &cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseConfig_UnknownGateIsSentinel(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseConfig([]byte("fusion:\n  exclude: [Bogus]\n"), &cfg)
	assert.ErrorIs(t, err, ops.ErrUnknownGate)
}

func TestLoadConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "qtape.yaml")

	cfg, err := LoadConfig(missing, false)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig(missing, true)
	require.Error(t, err)

	path := writeConfig(t, "draw:\n  decimals: 4\n")
	cfg, err = LoadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Draw.Decimals)
}

func TestConfig_FusionOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fusion.Atol = 0.25
	cfg.Fusion.Exclude = []string{"RZ"}

	opts := cfg.FusionOptions()
	assert.Equal(t, 0.25, opts.Atol)
	assert.Equal(t, []string{"RZ"}, opts.Exclude)

	// The options own their exclusion list.
	opts.Exclude[0] = "RX"
	assert.Equal(t, "RZ", cfg.Fusion.Exclude[0])
}
