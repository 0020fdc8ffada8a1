// Package config loads ff's configuration: built-in defaults, then an
// optional hujson config file, then CLI flag overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/foundryfind/ff/pkg/store"
)

// ConfigFileName is the default config file name, read from the
// working directory.
const ConfigFileName = ".ff.json"

var (
	errConfigFileRead     = errors.New("cannot read config file")
	errConfigInvalid      = errors.New("invalid config file")
	errUnknownScheme      = errors.New("unknown scheme")
	errChunkCapacityFixed = errors.New("chunk_capacity is compiled into the binary and cannot be overridden")
)

// Config holds ff's tunables. Field names match the CLI flags.
type Config struct {
	CaseSensitive bool   `json:"case_sensitive,omitempty"` //nolint:tagliatelle
	Scheme        string `json:"scheme,omitempty"`
	DebounceMS    int    `json:"debounce_ms,omitempty"`    //nolint:tagliatelle
	GrowthTickMS  int    `json:"growth_tick_ms,omitempty"` //nolint:tagliatelle
	TopK          int    `json:"top_k,omitempty"`          //nolint:tagliatelle
	ChunkCapacity int    `json:"chunk_capacity,omitempty"` //nolint:tagliatelle
}

// DefaultConfig returns ff's built-in defaults: the default ordering
// scheme, a 100ms debounce and growth tick, a 30-item non-interactive
// top-K, and the compiled-in chunk capacity.
func DefaultConfig() Config {
	return Config{
		Scheme:        "default",
		DebounceMS:    100,
		GrowthTickMS:  100,
		TopK:          30,
		ChunkCapacity: store.ChunkCapacity,
	}
}

// Overrides carries the subset of fields the CLI flags explicitly set;
// a zero-value field here means "flag not passed", not "set to zero".
type Overrides struct {
	CaseSensitive *bool
	Scheme        *string
	TopK          *int

	// ConfigFile, when set, replaces the default .ff.json lookup; the
	// file must then exist (an explicitly requested config that's
	// missing is an error, unlike the optional default).
	ConfigFile *string
}

// Load builds the effective Config: defaults, then workDir's .ff.json
// if present, then cliOverrides.
func Load(workDir string, cliOverrides Overrides) (Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(workDir, ConfigFileName)
	explicit := false

	if cliOverrides.ConfigFile != nil && *cliOverrides.ConfigFile != "" {
		path = *cliOverrides.ConfigFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		explicit = true
	}

	fileCfg, found, err := loadFile(path)
	if err != nil {
		return Config{}, err
	}

	if explicit && !found {
		return Config{}, fmt.Errorf("%w: %s", errConfigFileRead, path)
	}

	if found {
		cfg = merge(cfg, fileCfg)
	}

	if cliOverrides.CaseSensitive != nil {
		cfg.CaseSensitive = *cliOverrides.CaseSensitive
	}

	if cliOverrides.Scheme != nil {
		cfg.Scheme = *cliOverrides.Scheme
	}

	if cliOverrides.TopK != nil {
		cfg.TopK = *cliOverrides.TopK
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFile(path string) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a fixed filename joined to a caller-supplied dir
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", errConfigFileRead, path)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func merge(base, overlay Config) Config {
	if overlay.Scheme != "" {
		base.Scheme = overlay.Scheme
	}

	if overlay.DebounceMS != 0 {
		base.DebounceMS = overlay.DebounceMS
	}

	if overlay.GrowthTickMS != 0 {
		base.GrowthTickMS = overlay.GrowthTickMS
	}

	if overlay.TopK != 0 {
		base.TopK = overlay.TopK
	}

	if overlay.ChunkCapacity != 0 {
		base.ChunkCapacity = overlay.ChunkCapacity
	}

	base.CaseSensitive = base.CaseSensitive || overlay.CaseSensitive

	return base
}

func validate(cfg Config) error {
	switch cfg.Scheme {
	case "default", "path", "history":
	default:
		return fmt.Errorf("%w: %s", errUnknownScheme, cfg.Scheme)
	}

	// ChunkCapacity is carried in Config so a config file documents the
	// value it was tuned against (pkg/store.chunk's array is sized by
	// the store.ChunkCapacity const at compile time); an explicit
	// mismatch almost always means the file was copied from a
	// differently-built ff and would silently misreport chunk-boundary
	// behavior (the cache clear on seal boundaries), so it's rejected rather
	// than ignored.
	if cfg.ChunkCapacity != 0 && cfg.ChunkCapacity != store.ChunkCapacity {
		return fmt.Errorf("%w: got %d, built with %d", errChunkCapacityFixed, cfg.ChunkCapacity, store.ChunkCapacity)
	}

	return nil
}
