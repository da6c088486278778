package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
	"github.com/dmitrijs2005/todokeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Pointer fields distinguish "absent" from the zero value.
type JsonConfig struct {
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	LogLevel                     *string         `json:"log_level"`
	LogFormat                    *string         `json:"log_format"`
	AuthRateLimit                *string         `json:"auth_rate_limit"`
	MaxLoginAttempts             *int            `json:"max_login_attempts"`
	LockoutCooldown              *timex.Duration `json:"lockout_cooldown"`
	LockoutRedisAddr             *string         `json:"lockout_redis_addr"`
	MetricsEnabled               *bool           `json:"metrics_enabled"`
	Development                  *bool           `json:"development"`
	ShutdownTimeout              *timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field present in it into config.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.ConfigFilePath()

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setDurationIf(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDurationIf(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.LogFormat, c.LogFormat)
	setIf(&config.AuthRateLimit, c.AuthRateLimit)
	setIf(&config.MaxLoginAttempts, c.MaxLoginAttempts)
	setDurationIf(&config.LockoutCooldown, c.LockoutCooldown)
	setIf(&config.LockoutRedisAddr, c.LockoutRedisAddr)
	setIf(&config.MetricsEnabled, c.MetricsEnabled)
	setIf(&config.Development, c.Development)
	setDurationIf(&config.ShutdownTimeout, c.ShutdownTimeout)
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDurationIf(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}
