package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-d", "-s", "-t", "-r", "-l", "-f", "-q", "-m", "-k", "-dev"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST bind address (e.g., ":8080")
//	-g string   gRPC health bind address; empty disables it
//	-d string   PostgreSQL DSN, or "memory"
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-l string   log level (debug, info, warn, error)
//	-f string   log format (json, text, zerolog)
//	-q string   auth rate limit (e.g., "20-M")
//	-m int      failed logins before lockout; 0 disables
//	-k string   Redis address for lockout counters
//	-dev        development mode
//
// Duration flags are accepted as integers in minutes and only applied when given.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the REST API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")
	fs.StringVar(&config.AuthRateLimit, "q", config.AuthRateLimit, "auth rate limit")
	fs.IntVar(&config.MaxLoginAttempts, "m", config.MaxLoginAttempts, "failed logins before lockout")
	fs.StringVar(&config.LockoutRedisAddr, "k", config.LockoutRedisAddr, "redis address for lockout counters")
	fs.BoolVar(&config.Development, "dev", config.Development, "development mode")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// only explicit flags replace durations, so sub-minute values from
	// earlier layers survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
		}
	})
	return nil
}
