// Package providers hosts translation backends implementing
// translation.Service.
package providers

import "time"

// Config is the shared backend configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds a single request, not the whole chunk retry cycle.
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

// DefaultConfig returns backend defaults. The long timeout is intentional:
// batch completions over large chunks can take minutes.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o-mini",
		Timeout:     5 * time.Minute,
		Temperature: 0.3,
		MaxTokens:   8192,
	}
}
