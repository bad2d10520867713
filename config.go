package relay

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the relay configuration. It can
// be populated from JSON or YAML; the zero-value is useful - all nested
// fields inherit their package defaults.
type Config struct {
	// BaseURL roots the filesystem-backed stores; empty keeps everything
	// in memory.
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`

	Server   ServerConfig   `json:"server" yaml:"server"`
	Delivery DeliveryConfig `json:"delivery" yaml:"delivery"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// DeliveryConfig configures the outbound deliverer.
type DeliveryConfig struct {
	// TimeoutMs bounds each delivery attempt, in milliseconds.
	TimeoutMs int `json:"timeoutMs" yaml:"timeoutMs"`
}

// DefaultConfig returns a Config populated with package defaults.
func DefaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Delivery: DeliveryConfig{TimeoutMs: 5000},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Delivery.TimeoutMs <= 0 {
		return fmt.Errorf("delivery.timeoutMs must be > 0")
	}
	return nil
}

// LoadConfig reads a YAML config document from the supplied URL (any scheme
// the afs service understands) and fills defaults for omitted fields.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", URL, err)
	}
	ret := DefaultConfig()
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
