package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// glossaryFile is the on-disk TOML shape:
//
//	[[terms]]
//	term = "latency"
//	translation = "延迟"
type glossaryFile struct {
	Terms []glossaryTerm `toml:"terms"`
}

type glossaryTerm struct {
	Term        string `toml:"term"`
	Translation string `toml:"translation"`
}

// LoadGlossary reads a TOML glossary into a term -> translation map. An
// empty path returns an empty map.
func LoadGlossary(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	var file glossaryFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load glossary %s: %w", path, err)
	}
	glossary := make(map[string]string, len(file.Terms))
	for _, t := range file.Terms {
		if t.Term != "" && t.Translation != "" {
			glossary[t.Term] = t.Translation
		}
	}
	return glossary, nil
}

// blacklistFile is the on-disk TOML shape:
//
//	[[entries]]
//	term = "ACME Corp"
//	case_sensitive = true
type blacklistFile struct {
	Entries []BlacklistEntry `toml:"entries"`
}

// BlacklistEntry mirrors document.BlacklistEntry at the config boundary.
type BlacklistEntry struct {
	Term          string `toml:"term"`
	CaseSensitive bool   `toml:"case_sensitive"`
}

// LoadBlacklist reads the TOML blacklist. An empty path returns nil.
func LoadBlacklist(path string) ([]BlacklistEntry, error) {
	if path == "" {
		return nil, nil
	}
	var file blacklistFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load blacklist %s: %w", path, err)
	}
	return file.Entries, nil
}
