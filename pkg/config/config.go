// Package config loads the lineage configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/lineage/config.toml
// (~/.config/lineage/config.toml when XDG_CONFIG_HOME is unset). Every
// setting has a default, so a missing file is not an error:
//
//	[layout]
//	unit_x = 150
//	unit_y = 60
//
//	[cache]
//	backend = "file"   # file, redis or none
//
//	[redis]
//	addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"  # memory or mongo
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//	database = "lineage"
//
//	[server]
//	addr = ":8080"
//	sessions = "redis" # memory or redis
//	session_ttl = "24h"
//
//	[directory]
//	path = "~/catalog/directory.toml"
//
// Command-line flags override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// AppName names the config, cache and session directories.
const AppName = "lineage"

// Backend names.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Config is the full configuration.
type Config struct {
	Layout    LayoutConfig    `toml:"layout"`
	Cache     CacheConfig     `toml:"cache"`
	Redis     RedisConfig     `toml:"redis"`
	Store     StoreConfig     `toml:"store"`
	Mongo     MongoConfig     `toml:"mongo"`
	Server    ServerConfig    `toml:"server"`
	Directory DirectoryConfig `toml:"directory"`
}

// LayoutConfig sets the layout grid.
type LayoutConfig struct {
	UnitX float64 `toml:"unit_x"`
	UnitY float64 `toml:"unit_y"`
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Backend string `toml:"backend"`
	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StoreConfig selects where the server keeps records and layouts.
type StoreConfig struct {
	Backend string `toml:"backend"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// ServerConfig configures "lineage serve".
type ServerConfig struct {
	Addr       string        `toml:"addr"`
	Sessions   string        `toml:"sessions"`
	SessionTTL time.Duration `toml:"session_ttl"`
}

// DirectoryConfig points at the user and team directory file.
type DirectoryConfig struct {
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{UnitX: 150, UnitY: 60},
		Cache:  CacheConfig{Backend: BackendFile},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		Store:  StoreConfig{Backend: BackendMemory},
		Mongo:  MongoConfig{Database: AppName},
		Server: ServerConfig{Addr: ":8080", Sessions: BackendMemory, SessionTTL: 24 * time.Hour},
	}
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := userDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the default file cache directory.
func CacheDir() (string, error) {
	return userDir("XDG_CACHE_HOME", ".cache")
}

func userDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}

// Load reads the file at path over the defaults. An empty path means the
// default location. A missing file yields the defaults; unknown keys are an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.Directory.Path = expandHome(cfg.Directory.Path)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	return cfg, cfg.Validate()
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// Validate checks value ranges and backend names.
func (c Config) Validate() error {
	if c.Layout.UnitX <= 0 || c.Layout.UnitY <= 0 {
		return fmt.Errorf("layout units must be positive, got %v x %v", c.Layout.UnitX, c.Layout.UnitY)
	}
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if !slices.Contains([]string{BackendMemory, BackendMongo}, c.Store.Backend) {
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if !slices.Contains([]string{BackendMemory, BackendRedis}, c.Server.Sessions) {
		return fmt.Errorf("unknown session backend %q", c.Server.Sessions)
	}
	needsRedis := c.Cache.Backend == BackendRedis || c.Server.Sessions == BackendRedis
	if needsRedis && c.Redis.Addr == "" {
		return errors.New("redis backend selected but redis.addr is empty")
	}
	if c.Store.Backend == BackendMongo && c.Mongo.URI == "" {
		return errors.New("mongo store selected but mongo.uri is empty")
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be positive, got %s", c.Server.SessionTTL)
	}
	return nil
}
