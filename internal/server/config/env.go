package config

import "github.com/ilyakaznacheev/cleanenv"

// parseEnv overlays every field whose env tag names a set variable.
// Unset variables leave the current value alone.
func parseEnv(config *Config) error {
	return cleanenv.ReadEnv(config)
}
