package noderank

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultMaxLatencyMs is the highest probe latency still counted healthy.
	DefaultMaxLatencyMs = 150.0

	// DefaultCheckTimeout bounds a single probe.
	DefaultCheckTimeout = 5 * time.Second

	// DefaultRequiredAttempts is the stability window size.
	DefaultRequiredAttempts = 3

	// DefaultInterAttemptDelay is the pause between stability attempts.
	DefaultInterAttemptDelay = 300 * time.Millisecond
)

// Config configures the health checker.
type Config struct {
	// Pool names the node pool; used in log fields, metrics labels and
	// event subjects.
	Pool string

	// MaxLatencyMs is the latency ceiling for a healthy classification.
	MaxLatencyMs float64

	// CheckTimeout bounds every individual probe.
	CheckTimeout time.Duration

	// RequiredAttempts is how many consecutive probes must succeed for a
	// node to count as stable. Must be at least 1.
	RequiredAttempts int

	// InterAttemptDelay is the pause between stability attempts.
	InterAttemptDelay time.Duration

	Logger *slog.Logger
}

func (c *Config) Validate() error {
	if c.Pool == "" {
		return fmt.Errorf("Pool is required")
	}
	if c.MaxLatencyMs < 0 {
		return fmt.Errorf("MaxLatencyMs must not be negative")
	}
	if c.CheckTimeout < 0 {
		return fmt.Errorf("CheckTimeout must not be negative")
	}
	if c.RequiredAttempts < 0 {
		return fmt.Errorf("RequiredAttempts must not be negative")
	}
	if c.InterAttemptDelay < 0 {
		return fmt.Errorf("InterAttemptDelay must not be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.MaxLatencyMs == 0 {
		c.MaxLatencyMs = DefaultMaxLatencyMs
	}
	if c.CheckTimeout == 0 {
		c.CheckTimeout = DefaultCheckTimeout
	}
	if c.RequiredAttempts == 0 {
		c.RequiredAttempts = DefaultRequiredAttempts
	}
	if c.InterAttemptDelay == 0 {
		c.InterAttemptDelay = DefaultInterAttemptDelay
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// FileConfig is the user-facing JSON configuration: engine settings plus the
// candidate node list. It converts to the internal Config for the checker.
type FileConfig struct {
	Pool   string         `json:"pool"`
	Checks ChecksConfig   `json:"checks,omitempty"`
	NATS   NATSFileConfig `json:"nats,omitempty"`
	Nodes  []Node         `json:"nodes"`
}

// ChecksConfig contains probe and stability settings.
type ChecksConfig struct {
	MaxLatencyMs        float64 `json:"maxLatencyMs,omitempty"`
	CheckTimeoutMs      int64   `json:"checkTimeoutMs,omitempty"`
	RequiredAttempts    int     `json:"requiredAttempts,omitempty"`
	InterAttemptDelayMs int64   `json:"interAttemptDelayMs,omitempty"`
}

// NATSFileConfig contains optional result-publishing settings.
type NATSFileConfig struct {
	Servers     []string `json:"servers,omitempty"`
	Credentials string   `json:"credentials,omitempty"`
}

// IsConfigured returns true if result publishing is configured.
func (n NATSFileConfig) IsConfigured() bool {
	return len(n.Servers) > 0
}

// LoadConfigFromFile loads configuration from a JSON file.
func LoadConfigFromFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// WriteConfigToFile writes the configuration to a JSON file.
func WriteConfigToFile(cfg *FileConfig, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the file configuration.
func (c *FileConfig) Validate() error {
	if c.Pool == "" {
		return fmt.Errorf("pool is required")
	}
	for i, n := range c.Nodes {
		if n.ID == "" {
			return fmt.Errorf("nodes[%d]: id is required", i)
		}
		if n.Address == "" {
			return fmt.Errorf("nodes[%d]: address is required", i)
		}
		if _, err := url.Parse(n.Address); err != nil {
			return fmt.Errorf("nodes[%d]: address is not a valid URL: %w", i, err)
		}
	}
	return nil
}

// ToCheckerConfig converts FileConfig to the internal Config used by Checker.
func (c *FileConfig) ToCheckerConfig(logger *slog.Logger) Config {
	return Config{
		Pool:              c.Pool,
		MaxLatencyMs:      c.Checks.MaxLatencyMs,
		CheckTimeout:      time.Duration(c.Checks.CheckTimeoutMs) * time.Millisecond,
		RequiredAttempts:  c.Checks.RequiredAttempts,
		InterAttemptDelay: time.Duration(c.Checks.InterAttemptDelayMs) * time.Millisecond,
		Logger:            logger,
	}
}

// NewDefaultFileConfig creates a FileConfig with the given pool and nodes and
// default check settings.
func NewDefaultFileConfig(pool string, nodes []Node) *FileConfig {
	return &FileConfig{
		Pool: pool,
		Checks: ChecksConfig{
			MaxLatencyMs:        DefaultMaxLatencyMs,
			CheckTimeoutMs:      DefaultCheckTimeout.Milliseconds(),
			RequiredAttempts:    DefaultRequiredAttempts,
			InterAttemptDelayMs: DefaultInterAttemptDelay.Milliseconds(),
		},
		Nodes: nodes,
	}
}
