package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "licensemap-mcp", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "MCP")
}

func TestRootCmd_Flags(t *testing.T) {
	assert.NotNil(t, rootCmd.Flags().Lookup("transport"))
	assert.NotNil(t, rootCmd.Flags().Lookup("http-addr"))
	assert.NotNil(t, rootCmd.Flags().Lookup("config"))
	assert.NotNil(t, rootCmd.Flags().Lookup("log-level"))
}

func TestLoadConfig_FromFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`version: "1"
overrides: overrides.properties
mcp:
  max_dependencies: 50
`)
	require.NoError(t, os.WriteFile(cfgPath, content, 0o644))

	oldConfigPath := configPath
	defer func() { configPath = oldConfigPath }()
	configPath = cfgPath

	cfg, err := loadConfig()

	require.NoError(t, err)
	assert.Equal(t, "overrides.properties", cfg.Overrides)
	assert.Equal(t, 50, cfg.MCP.MaxDependencies)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	oldConfigPath := configPath
	defer func() { configPath = oldConfigPath }()
	configPath = "/nonexistent/path/config.yaml"

	_, err := loadConfig()

	assert.Error(t, err)
}

func TestRunServer_InvalidTransport(t *testing.T) {
	oldTransport := transport
	defer func() { transport = oldTransport }()
	transport = "carrier-pigeon"

	err := runServer(rootCmd, nil)

	assert.ErrorContains(t, err, "unsupported transport")
}

func TestRunServer_InvalidLogLevel(t *testing.T) {
	oldLevel, oldConfigPath := logLevel, configPath
	defer func() { logLevel, configPath = oldLevel, oldConfigPath }()
	logLevel = "loud"
	configPath = filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: \"1\"\n"), 0o644))

	err := runServer(rootCmd, nil)

	assert.ErrorContains(t, err, "not a valid level")
}
