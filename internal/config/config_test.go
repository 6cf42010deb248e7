package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestValidateRejectsBadBootstrapMode(t *testing.T) {
	cfg := Default()
	cfg.DHT.Bootstrap.Mode = "carrier-pigeon"
	assert.Error(t, Validate(cfg))
}

func TestValidateRequiresPeersForStaticMode(t *testing.T) {
	cfg := Default()
	cfg.DHT.Bootstrap.Mode = "static"
	assert.Error(t, Validate(cfg))
}

func TestApplyEnvOverridesPort(t *testing.T) {
	t.Setenv("CHORD_NODE_PORT", "9999")
	cfg := ApplyEnvOverrides(Default())
	assert.Equal(t, 9999, cfg.Node.Port)
}
