package jssplit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config represents the configuration for a JavaScript split initializer
type Config struct {
	// Script is the JavaScript code to execute. Its final expression must
	// evaluate to an array; each element becomes one split payload.
	Script string `json:"script"`

	// Timeout is the maximum execution time for the script
	Timeout time.Duration `json:"timeout,omitempty"`

	// ManualInputs allows injecting extra values into the script's input
	// object
	ManualInputs map[string]interface{} `json:"manual_inputs,omitempty"`
}

// ApplyDefaults sets default values for configuration fields
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Script == "" {
		return fmt.Errorf("script is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// ParseConfig parses and validates a jssplit configuration payload
func ParseConfig(raw json.RawMessage) (*Config, error) {
	var config Config
	if err := json.Unmarshal(raw, &config); err != nil {
		return nil, fmt.Errorf("failed to parse jssplit config: %w", err)
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
