package rates

import (
	"strings"

	"currencyconverter/internal/apperrors"
)

// Mode selects how the Store obtains a snapshot.
type Mode string

// Supported modes.
const (
	// ModeRemote always fetches and persists the result when a cache is configured.
	ModeRemote Mode = "remote"
	// ModeCachedRefresh reads the cache and refreshes it once it is stale,
	// falling back to the stale copy when the refresh fails.
	ModeCachedRefresh Mode = "cached-refresh"
	// ModeCachedOnly returns the cache verbatim and never fetches.
	ModeCachedOnly Mode = "cached-only"
)

var legacyModes = map[string]Mode{
	"api":            ModeRemote,
	"file":           ModeCachedRefresh,
	"file_no_update": ModeCachedOnly,
}

// ParseMode converts a configuration value into a Mode. The older names
// "api", "file" and "file_no_update" are accepted as aliases.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	m := Mode(s)
	if m.Valid() {
		return m, nil
	}
	if alias, ok := legacyModes[s]; ok {
		return alias, nil
	}
	return "", apperrors.New(apperrors.KindInvalidConfig, "invalid rates mode %q (want remote, cached-refresh or cached-only)", s)
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeRemote, ModeCachedRefresh, ModeCachedOnly:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }
