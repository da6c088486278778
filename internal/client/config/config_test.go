package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "session.db", c.SessionFile)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	c := Config{ServerURL: "127.0.0.1:8080", RequestTimeout: 0}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server url must be absolute")
	assert.Contains(t, err.Error(), "request timeout must be positive")
}

func TestLoadConfig_JSONThenFlags(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"server_url":      "http://json:1",
		"request_timeout": "3s",
	})

	old := os.Args
	t.Cleanup(func() { os.Args = old })
	os.Args = []string{"cli", "-c", path, "-a", "http://flag:2"}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://flag:2", cfg.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "session.db", cfg.SessionFile)
}

func TestLoadConfig_Invalid(t *testing.T) {
	old := os.Args
	t.Cleanup(func() { os.Args = old })
	os.Args = []string{"cli", "-a", "not a url"}

	_, err := LoadConfig()
	assert.Error(t, err)
}
