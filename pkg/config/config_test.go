package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[layout]
unit_x = 100

[cache]
backend = "redis"

[redis]
addr = "cache:6379"
db = 2

[server]
addr = ":9090"
sessions = "redis"
session_ttl = "2h"

[directory]
path = "~/dir.toml"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	want.Layout.UnitX = 100
	want.Cache.Backend = BackendRedis
	want.Redis = RedisConfig{Addr: "cache:6379", DB: 2}
	want.Server = ServerConfig{Addr: ":9090", Sessions: BackendRedis, SessionTTL: 2 * time.Hour}
	home, _ := os.UserHomeDir()
	want.Directory.Path = filepath.Join(home, "dir.toml")

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"UnknownKey", "[layout]\nunit_z = 1", "unknown keys: layout.unit_z"},
		{"BadSyntax", "[layout", "load config"},
		{"BadUnits", "[layout]\nunit_y = 0", "layout units"},
		{"BadCache", "[cache]\nbackend = \"s3\"", "cache backend"},
		{"BadStore", "[store]\nbackend = \"sqlite\"", "store backend"},
		{"MongoWithoutURI", "[store]\nbackend = \"mongo\"", "mongo.uri"},
		{"RedisWithoutAddr", "[cache]\nbackend = \"redis\"\n[redis]\naddr = \"\"", "redis.addr"},
		{"BadSessions", "[server]\nsessions = \"file\"", "session backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") with no file: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("explicit missing path should fail")
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	if p, _ := Path(); p != "/tmp/xdg-config/lineage/config.toml" {
		t.Errorf("Path() = %q", p)
	}
	if d, _ := CacheDir(); d != "/tmp/xdg-cache/lineage" {
		t.Errorf("CacheDir() = %q", d)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	home, _ := os.UserHomeDir()
	if d, _ := CacheDir(); d != filepath.Join(home, ".cache", AppName) {
		t.Errorf("CacheDir() without XDG = %q", d)
	}
}
