// Package config loads the engine configuration from a YAML file, applying
// defaults for optional fields and accumulating validation problems into a
// single error.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AttendanceConfig configures the live attendance feed poll.
type AttendanceConfig struct {
	// URL is the feed endpoint; empty disables the room status tracker.
	URL string `yaml:"url"`
	// Token is appended as a static query parameter on every poll.
	Token string `yaml:"token"`
	// Poll is the cron schedule of the tick, e.g. "@every 10s".
	Poll string `yaml:"poll"`
}

// FavoritesConfig selects the favorite-set storage backend.
type FavoritesConfig struct {
	// Store is one of "memory", "file", or "sqlite".
	Store string `yaml:"store"`
	// Path is the file path (file store) or database path (sqlite store).
	Path string `yaml:"path"`
}

// Config is the top-level engine configuration.
type Config struct {
	// Listen is the HTTP listen address of the query API.
	Listen string `yaml:"listen"`
	// SnapshotPath is the raw snapshot JSON document to load.
	SnapshotPath string `yaml:"snapshot_path"`
	// TimezoneOffsetMinutes is the conference offset east of UTC.
	TimezoneOffsetMinutes int `yaml:"timezone_offset_minutes"`
	// Locale selects the localized fields: "en" or "zh-TW".
	Locale string `yaml:"locale"`

	Attendance AttendanceConfig `yaml:"attendance"`
	Favorites  FavoritesConfig  `yaml:"favorites"`

	// RoomCapacities overrides the built-in capacity table when non-empty.
	RoomCapacities map[string]int `yaml:"room_capacities"`
}

// Default returns the in-memory default configuration.
func Default() Config {
	return Config{
		Listen:                "127.0.0.1:8080",
		SnapshotPath:          "session.json",
		TimezoneOffsetMinutes: 480,
		Locale:                "en",
		Attendance: AttendanceConfig{
			Poll: "@every 10s",
		},
		Favorites: FavoritesConfig{
			Store: "file",
			Path:  "favorites.json",
		},
	}
}

// Load reads the configuration file at path. An empty path yields the
// defaults. The loaded configuration is validated before being returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	invalid := make([]string, 0, 2)

	if strings.TrimSpace(c.Listen) == "" {
		invalid = append(invalid, "listen")
	}
	if strings.TrimSpace(c.SnapshotPath) == "" {
		invalid = append(invalid, "snapshot_path")
	}
	// Offsets beyond +/-14h do not exist.
	if c.TimezoneOffsetMinutes < -840 || c.TimezoneOffsetMinutes > 840 {
		invalid = append(invalid, "timezone_offset_minutes")
	}
	if c.Locale != "en" && c.Locale != "zh-TW" {
		invalid = append(invalid, "locale")
	}
	if c.Attendance.URL != "" && strings.TrimSpace(c.Attendance.Poll) == "" {
		invalid = append(invalid, "attendance.poll")
	}
	switch c.Favorites.Store {
	case "memory":
	case "file", "sqlite":
		if strings.TrimSpace(c.Favorites.Path) == "" {
			invalid = append(invalid, "favorites.path")
		}
	default:
		invalid = append(invalid, "favorites.store")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("config: invalid values for: %s", strings.Join(invalid, ", "))
	}
	return nil
}
