package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	base := func() *Config {
		return &Config{
			EndpointAddrHTTP:             ":8080",
			AccessTokenValidityDuration:  30 * time.Second,
			RefreshTokenValidityDuration: time.Hour,
		}
	}

	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-g", ":6000", "-d", "db", "-s", "secret",
			"-t", "1", "-r", "3", "-l", "debug", "-f", "zerolog", "-q", "5-S", "-m", "7", "-k", "redis:6379", "-dev",
		},
			expected: &Config{
				EndpointAddrHTTP:             "127.0.0.1:9090",
				EndpointAddrGRPC:             ":6000",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				AccessTokenValidityDuration:  1 * time.Minute,
				RefreshTokenValidityDuration: 3 * time.Minute,
				LogLevel:                     "debug",
				LogFormat:                    "zerolog",
				AuthRateLimit:                "5-S",
				MaxLoginAttempts:             7,
				LockoutRedisAddr:             "redis:6379",
				Development:                  true,
			}},
		{name: "no flags keeps sub-minute durations", args: []string{"cmd"}, expected: base()},
		{name: "foreign flags ignored", args: []string{"cmd", "-c", "cfg.json", "-x", "1", "-a", ":1"},
			expected: func() *Config { c := base(); c.EndpointAddrHTTP = ":1"; return c }()},
		{name: "bad int", args: []string{"cmd", "-t", "soon"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := base()
			err := parseFlags(config)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("ACCESS_TOKEN_TTL", "90s")
	t.Setenv("MAX_LOGIN_ATTEMPTS", "0")
	t.Setenv("METRICS_ENABLED", "false")

	c := &Config{}
	c.LoadDefaults()
	require.NoError(t, parseEnv(c))

	assert.Equal(t, ":7000", c.EndpointAddrHTTP)
	assert.Equal(t, 90*time.Second, c.AccessTokenValidityDuration)
	assert.Equal(t, 0, c.MaxLoginAttempts)
	assert.False(t, c.MetricsEnabled)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC, "unset variables keep the current value")
}

func TestParseEnv_BadValue(t *testing.T) {
	t.Setenv("MAX_LOGIN_ATTEMPTS", "many")

	c := &Config{}
	assert.Error(t, parseEnv(c))
}
