package live

import (
	"os"
	"strconv"
)

// Config tunes per-connection limits.
type Config struct {
	// EventsPerSecond is the sustained inbound event rate per connection.
	EventsPerSecond float64
	// EventBurst is the number of events a connection may send at once.
	EventBurst int
	// SendBuffer is the outbound frame queue length per connection.
	SendBuffer int
}

// DefaultConfig returns the default live configuration.
func DefaultConfig() Config {
	return Config{
		EventsPerSecond: 10,
		EventBurst:      20,
		SendBuffer:      64,
	}
}

// LoadConfig reads the configuration from environment variables, keeping
// defaults for unset or invalid values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v, err := strconv.ParseFloat(os.Getenv("LIVE_EVENTS_PER_SECOND"), 64); err == nil && v > 0 {
		cfg.EventsPerSecond = v
	}
	if v, err := strconv.Atoi(os.Getenv("LIVE_EVENT_BURST")); err == nil && v > 0 {
		cfg.EventBurst = v
	}
	if v, err := strconv.Atoi(os.Getenv("LIVE_SEND_BUFFER")); err == nil && v > 0 {
		cfg.SendBuffer = v
	}

	return cfg
}
