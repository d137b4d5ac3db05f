package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {

	t.Run("empty path yields validated defaults", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Listen != "127.0.0.1:8080" {
			t.Fatalf("unexpected default listen: %q", cfg.Listen)
		}
		if cfg.TimezoneOffsetMinutes != 480 {
			t.Fatalf("unexpected default offset: %d", cfg.TimezoneOffsetMinutes)
		}
		if cfg.Attendance.Poll != "@every 10s" {
			t.Fatalf("unexpected default poll: %q", cfg.Attendance.Poll)
		}
		if cfg.Favorites.Store != "file" {
			t.Fatalf("unexpected default favorites store: %q", cfg.Favorites.Store)
		}
	})

	t.Run("yaml values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		doc := `
listen: ":9090"
snapshot_path: /data/session.json
timezone_offset_minutes: 0
locale: zh-TW
attendance:
  url: https://feed.example.com/api/attendance
  token: conf2024
  poll: "@every 30s"
favorites:
  store: sqlite
  path: /var/lib/agenda/favorites.db
room_capacities:
  TR411: 38
`
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Listen != ":9090" || cfg.Locale != "zh-TW" {
			t.Fatalf("overrides not applied: %+v", cfg)
		}
		if cfg.Attendance.Token != "conf2024" || cfg.Attendance.Poll != "@every 30s" {
			t.Fatalf("attendance overrides not applied: %+v", cfg.Attendance)
		}
		if cfg.RoomCapacities["TR411"] != 38 {
			t.Fatalf("capacity override not applied: %v", cfg.RoomCapacities)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("invalid fields are accumulated", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		doc := `
listen: ""
snapshot_path: ""
timezone_offset_minutes: 2000
locale: fr
favorites:
  store: redis
`
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}

		_, err := Load(path)
		if err == nil {
			t.Fatal("expected validation error")
		}
		for _, field := range []string{"listen", "snapshot_path", "timezone_offset_minutes", "locale", "favorites.store"} {
			if !strings.Contains(err.Error(), field) {
				t.Fatalf("error %q missing field %s", err.Error(), field)
			}
		}
	})
}
