// Package config loads the user configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/revgraph/config.toml
// (~/.config/revgraph/config.toml when XDG_CONFIG_HOME is unset). A missing
// file is not an error: [Load] returns [Default] in that case. Command-line
// flags override the loaded values.
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[log]
//	max_count = 500
//	reader = "exec"
//
//	[layout]
//	color_policy = "first-parent"
//
//	[render]
//	charset = "ascii"
//	palette = ["#e06c75", "#98c379"]
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/revgraph/pkg/cache"
	"github.com/matzehuels/revgraph/pkg/gitlog"
	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/render/text"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

const (
	appName  = "revgraph"
	fileName = "config.toml"
)

// Config is the complete user configuration.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the history cache backend.
type CacheConfig struct {
	Backend         string   `toml:"backend"`
	Dir             string   `toml:"dir,omitempty"`
	RedisAddr       string   `toml:"redis_addr,omitempty"`
	RedisPassword   string   `toml:"redis_password,omitempty"`
	RedisDB         int      `toml:"redis_db"`
	MongoURI        string   `toml:"mongo_uri,omitempty"`
	MongoDatabase   string   `toml:"mongo_database,omitempty"`
	MongoCollection string   `toml:"mongo_collection,omitempty"`
	TTL             Duration `toml:"ttl"`
}

// LogConfig holds the default revision query.
type LogConfig struct {
	MaxCount        int    `toml:"max_count"`
	All             bool   `toml:"all"`
	FirstParent     bool   `toml:"first_parent"`
	IncludeWorkTree bool   `toml:"include_worktree"`
	Reader          string `toml:"reader"`
}

// LayoutConfig holds lane assignment settings.
type LayoutConfig struct {
	ColorPolicy string `toml:"color_policy"`
}

// RenderConfig holds text rendering settings.
type RenderConfig struct {
	Charset string   `toml:"charset"`
	Color   bool     `toml:"color"`
	Palette []string `toml:"palette"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxRevisions int    `toml:"max_revisions"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend:         cache.BackendFile,
			MongoDatabase:   appName,
			MongoCollection: cache.DefaultMongoCollection,
			TTL:             Duration{cache.TTLHistory},
		},
		Log: LogConfig{
			Reader: gitlog.ReaderGoGit,
		},
		Layout: LayoutConfig{
			ColorPolicy: lanes.PolicyFreshOnMerge,
		},
		Render: RenderConfig{
			Charset: text.CharsetUnicode,
			Color:   true,
			Palette: append([]string(nil), text.DefaultPalette...),
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxRevisions: 5000,
		},
	}
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return invalid("cache.backend", "unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return invalid("cache.redis_addr", "required for the redis backend")
	}
	if c.Cache.Backend == cache.BackendMongo && c.Cache.MongoURI == "" {
		return invalid("cache.mongo_uri", "required for the mongo backend")
	}
	if c.Cache.RedisDB < 0 {
		return invalid("cache.redis_db", "must not be negative")
	}
	if c.Cache.TTL.Duration < 0 {
		return invalid("cache.ttl", "must not be negative")
	}

	if c.Log.MaxCount < 0 {
		return invalid("log.max_count", "must not be negative")
	}
	switch c.Log.Reader {
	case gitlog.ReaderGoGit, gitlog.ReaderExec:
	default:
		return invalid("log.reader", "unknown reader %q", c.Log.Reader)
	}

	if _, err := lanes.ParseColorPolicy(c.Layout.ColorPolicy); err != nil {
		return invalid("layout.color_policy", "%v", err)
	}

	if _, err := text.ParseCharset(c.Render.Charset); err != nil {
		return invalid("render.charset", "%v", err)
	}
	for _, p := range c.Render.Palette {
		if !hexColor.MatchString(p) {
			return invalid("render.palette", "%q is not a #rrggbb color", p)
		}
	}

	if c.Server.Addr == "" {
		return invalid("server.addr", "must not be empty")
	}
	if c.Server.MaxRevisions < 0 {
		return invalid("server.max_revisions", "must not be negative")
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, key, fmt.Sprintf(format, args...))
}

// Path returns the location of the configuration file.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the file at path on top of [Default] and validates the result.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML from r on top of [Default]. Unknown keys are rejected
// so that typos do not go unnoticed.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// CacheOptions converts the cache section into [cache.Options].
// An empty dir falls back to defaultDir.
func (c Config) CacheOptions(defaultDir string) cache.Options {
	dir := c.Cache.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		},
	}
}
