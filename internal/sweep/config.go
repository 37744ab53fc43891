package sweep

import (
	"fmt"
	"time"
)

// Config holds the knobs shared by every resource class pipeline.
type Config struct {
	// MaxRetries is the total number of delete attempts allowed per item while
	// the provider keeps answering with a rate limit rejection.
	MaxRetries int `mapstructure:"max-retries"`

	// InitialDelay is the wait after the first rate limited attempt. It doubles
	// after every further rejection and is never capped.
	InitialDelay time.Duration `mapstructure:"initial-delay"`

	// BatchSize is the number of deletes in flight at the same time.
	BatchSize int `mapstructure:"batch-size"`
}

// DefaultConfig returns five attempts, a two second initial delay and batches of four.
func DefaultConfig() Config {
	return Config{
		MaxRetries:   5,
		InitialDelay: 2 * time.Second,
		BatchSize:    4,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("initial delay must not be negative, got %s", c.InitialDelay)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	return nil
}

// WorstCaseDelay is the total time an item may spend waiting between attempts:
// InitialDelay * (2^(MaxRetries-1) - 1).
func (c Config) WorstCaseDelay() time.Duration {
	var total time.Duration
	delay := c.InitialDelay
	for i := 1; i < c.MaxRetries; i++ {
		total += delay
		delay *= 2
	}
	return total
}
