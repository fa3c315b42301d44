// Package probe exercises a running scout server end to end and generates
// synthetic datasets in the source CSV layout.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL string        // Base URL of the service
	Samples int           // Number of reference players to query
	Limit   int           // Result size requested per query
	Workers int           // Number of concurrent workers
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every query
}

// Report summarizes a probe run.
type Report struct {
	Samples    int
	Queries    int
	Failed     int
	Skipped    int
	Results    int
	Violations []string
	StartTime  time.Time
	Duration   time.Duration
}

// entry is the subset of a player row the probe inspects.
type entry struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

func (c *Config) withDefaults() {
	if c.Samples <= 0 {
		c.Samples = defaultSamples
	}
	if c.Limit <= 0 {
		c.Limit = defaultLimit
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

const (
	defaultSamples = 50
	defaultLimit   = 10
	defaultWorkers = 4
	defaultTimeout = 10 * time.Second
)
