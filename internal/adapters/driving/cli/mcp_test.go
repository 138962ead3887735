package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "0", port.DefValue)

	metrics := mcpServeCmd.Flags().Lookup("metrics-port")
	require.NotNil(t, metrics)
	assert.Equal(t, "0", metrics.DefValue)
}

func TestMCPServeCmd_MetricsNotConfigured(t *testing.T) {
	setupTestServices(t)
	t.Cleanup(func() {
		_ = mcpServeCmd.Flags().Set("metrics-port", "0")
	})

	_, err := execute(t, "mcp", "serve", "--metrics-port", "9999")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics not configured")
}
