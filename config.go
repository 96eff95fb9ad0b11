package simpool

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of a simulation run. It can be
// populated from YAML or assembled programmatically; zero values inherit the
// package defaults where a default exists.
type Config struct {
	// Capacity is the worker-pool size (number of slots). Must be positive.
	Capacity int `json:"capacity" yaml:"capacity"`

	// Seed drives both random selections (active worker, text line). Zero
	// means seed from the wall clock at run start.
	Seed int64 `json:"seed" yaml:"seed"`

	// ScriptURL locates the command script.
	ScriptURL string `json:"scriptURL" yaml:"scriptURL"`

	// TextURL locates the work-item text file.
	TextURL string `json:"textURL" yaml:"textURL"`

	// JournalBaseURL is the directory (any supported scheme) receiving the
	// per-worker journal artifacts.
	JournalBaseURL string `json:"journalBaseURL" yaml:"journalBaseURL"`

	// Events configures the simulation event feed.
	Events EventConfig `json:"events" yaml:"events"`
}

// EventConfig configures the event feed queue.
type EventConfig struct {
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Capacity:       4,
		JournalBaseURL: ".",
		Events: EventConfig{
			QueueBuffer: 128,
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be a positive integer, got %d", c.Capacity)
	}
	if c.ScriptURL == "" {
		return fmt.Errorf("scriptURL is required")
	}
	if c.TextURL == "" {
		return fmt.Errorf("textURL is required")
	}
	if c.Events.QueueBuffer <= 0 {
		return fmt.Errorf("events.queueBuffer must be > 0")
	}
	return nil
}

// LoadConfig reads a YAML config from the given URL, layered over the
// defaults.
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %v: %w", URL, err)
	}
	config := DefaultConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	return config, nil
}
