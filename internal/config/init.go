package config

import (
	"fmt"
	"os"
)

const defaultConfigTemplate = `# officetrans configuration.
# Every value can be overridden by an OFFICETRANS_* environment variable
# or a command line flag.

# Language pair (BCP 47 tags). Leave source_lang empty to auto-detect.
source_lang = ""
target_lang = "en"

# Translation backend: "openai" (any OpenAI-compatible endpoint) or
# "identity" (echoes text back, for offline dry runs).
provider = "openai"
model = "gpt-4o-mini"
api_key = ""
# base_url = "https://api.openai.com/v1"

# Free-text background sent with every request to steer terminology.
context = ""

# Optional TOML files, see the repository README for their shapes.
glossary_path = ""
blacklist_path = ""

# Request timeout in seconds.
request_timeout = 300

# Retry behavior per chunk: total attempts, base backoff in seconds
# (doubles per attempt), and the pause between chunks in milliseconds.
max_attempts = 3
retry_base_delay = 3
inter_chunk_delay_ms = 500

debug = false
`

// WriteDefault writes a commented starter config. It refuses to overwrite an
// existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
