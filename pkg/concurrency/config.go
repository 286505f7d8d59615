package concurrency

import (
	"os"
	"runtime"
	"strconv"
)

// ConfigSource indicates where the configuration came from
type ConfigSource string

const (
	ConfigSourceEnvVar  ConfigSource = "environment_variable"
	ConfigSourceDefault ConfigSource = "default"
)

// Config holds concurrency configuration parameters
type Config struct {
	// MaxConcurrent caps the number of simultaneously running initializer
	// workers. Zero means unbounded, the default for the manager's
	// elastically sized pool.
	MaxConcurrent int

	// Source indicates where the configuration came from
	Source ConfigSource

	// EffectiveCPUs is the number of CPUs the runtime will use
	EffectiveCPUs int
}

// LoadConfig loads concurrency configuration with priority: env vars > defaults
func LoadConfig() *Config {
	config := &Config{
		EffectiveCPUs: runtime.GOMAXPROCS(0),
		Source:        ConfigSourceDefault,
	}

	if maxConcurrent := getEnvInt("TALARIA_MAX_CONCURRENT", 0); maxConcurrent > 0 {
		config.MaxConcurrent = maxConcurrent
		config.Source = ConfigSourceEnvVar
	}

	return config
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
