package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Joik2ww/FileOrganizer/internal/errors"
	"github.com/Joik2ww/FileOrganizer/pkg/planner"
)

// EnvPrefix is stripped from environment variables before they are mapped to
// keys. A double underscore separates nesting levels, so
// DOUBLETERMINATOR_PROGRESS__SCAN_EVERY sets progress.scan_every.
const EnvPrefix = "DOUBLETERMINATOR_"

// Config holds every setting a run needs besides its target directory.
type Config struct {
	Keep           string   `koanf:"keep"`
	Subfolders     bool     `koanf:"subfolders"`
	Concurrency    int      `koanf:"concurrency"`
	MinSize        int64    `koanf:"min_size"`
	Excludes       []string `koanf:"excludes"`
	ExtraProtected []string `koanf:"extra_protected"`
	Progress       Progress `koanf:"progress"`
}

type Progress struct {
	ScanEvery int `koanf:"scan_every"`
	HashEvery int `koanf:"hash_every"`
}

// Defaults returns the built-in configuration layer.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"keep":                planner.KeepOldest,
		"subfolders":          false,
		"concurrency":         0,
		"min_size":            0,
		"excludes":            []string{},
		"extra_protected":     []string{},
		"progress.scan_every": 100,
		"progress.hash_every": planner.DefaultHashProgressEvery,
	}
}

// DefaultPath is where Load looks when no file is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "doubleterminator", "config.toml")
}

// Load layers defaults, the TOML file at path and the environment. An empty
// path means DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "load defaults")
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "parse config %s", path).
				WithDetail("path", path)
		}
	} else if explicit {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "read config %s", path).
			WithDetail("path", path)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "load environment")
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate rejects values no run could use.
func (c *Config) Validate() error {
	if _, err := planner.ParseKeep(c.Keep); err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "invalid keep")
	}
	if c.Concurrency < 0 {
		return errors.Newf(errors.ErrConfigValid, "concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.MinSize < 0 {
		return errors.Newf(errors.ErrConfigValid, "min_size must not be negative, got %d", c.MinSize)
	}
	if c.Progress.ScanEvery <= 0 || c.Progress.HashEvery <= 0 {
		return errors.New(errors.ErrConfigValid, "progress intervals must be positive")
	}
	for _, p := range c.Excludes {
		if !doublestar.ValidatePattern(strings.TrimSuffix(p, "/")) {
			return errors.Newf(errors.ErrConfigValid, "invalid exclude pattern %q", p)
		}
	}
	return nil
}

// KeepOldest reports whether the oldest copy of each group is retained.
func (c *Config) KeepOldest() bool {
	keepOldest, _ := planner.ParseKeep(c.Keep)
	return keepOldest
}
