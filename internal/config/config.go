// Package config loads the designer's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/editor"
	"pagedesigner/internal/layout"
)

// DefaultAutosave is the autosave schedule used when none is configured.
const DefaultAutosave = "@every 1m"

// Config is the on-disk configuration. Empty fields take the defaults
// returned by Default.
type Config struct {
	DataDir       string  `yaml:"data_dir"`
	DBPath        string  `yaml:"db_path"`
	ExportDir     string  `yaml:"export_dir"`
	ExportDPI     float64 `yaml:"export_dpi"`
	Autosave      string  `yaml:"autosave"`   // cron spec, "off" disables
	WatchFile     string  `yaml:"watch_file"` // layout JSON re-imported on change
	SecretBackend string  `yaml:"secret_backend"`
	// RequireApproval makes destructive MCP tools wait for an answer given
	// with -approve or -reject.
	RequireApproval bool              `yaml:"require_approval"`
	Editor          Editor            `yaml:"editor"`
	DataSource      domain.DataSource `yaml:"data_source"`
}

// Editor holds the editing and placement constants.
type Editor struct {
	GridStep        float64 `yaml:"grid_step"`
	MinSize         float64 `yaml:"min_size"`
	SearchBound     float64 `yaml:"search_bound"`
	MaxHistory      int     `yaml:"max_history"`
	DuplicateOffset float64 `yaml:"duplicate_offset"`
	DragDeadbandPx  float64 `yaml:"drag_deadband_px"`
}

// DefaultDataDir is ~/.local/share/pagedesigner.
func DefaultDataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "pagedesigner")
}

// DefaultPath is the config file looked up when none is given.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a config file. A missing file yields the defaults.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "pagedesigner.db")
	}
	if c.ExportDir == "" {
		c.ExportDir = filepath.Join(c.DataDir, "exports")
	}
	if c.ExportDPI <= 0 {
		c.ExportDPI = 96
	}
	if c.Autosave == "" {
		c.Autosave = DefaultAutosave
	}
	def := editor.DefaultConfig()
	if c.Editor.GridStep <= 0 {
		c.Editor.GridStep = def.Layout.GridStep
	}
	if c.Editor.MinSize <= 0 {
		c.Editor.MinSize = def.Layout.MinSize
	}
	if c.Editor.SearchBound <= 0 {
		c.Editor.SearchBound = def.Layout.SearchBound
	}
	if c.Editor.MaxHistory <= 0 {
		c.Editor.MaxHistory = def.MaxHistory
	}
	if c.Editor.DuplicateOffset == 0 {
		c.Editor.DuplicateOffset = def.DuplicateOffset
	}
	if c.Editor.DragDeadbandPx <= 0 {
		c.Editor.DragDeadbandPx = def.DragDeadbandPx
	}
}

// AutosaveEnabled reports whether a schedule is configured.
func (c Config) AutosaveEnabled() bool {
	return c.Autosave != "" && c.Autosave != "off"
}

// EditorConfig converts the editor section into a session config.
func (c Config) EditorConfig() editor.Config {
	lc := layout.DefaultConfig()
	lc.GridStep = c.Editor.GridStep
	lc.MinSize = c.Editor.MinSize
	lc.SearchBound = c.Editor.SearchBound
	return editor.Config{
		Layout:          lc,
		MaxHistory:      c.Editor.MaxHistory,
		DuplicateOffset: c.Editor.DuplicateOffset,
		DragDeadbandPx:  c.Editor.DragDeadbandPx,
	}
}
