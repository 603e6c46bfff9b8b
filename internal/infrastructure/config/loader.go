package config

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

// Config holds all loaded configurations
type Config struct {
	Core   *CoreConfig
	Layout *LayoutConfig
}

// Loader loads configuration from JSON files using fs.FS interface.
// Files missing from the loader's filesystem fall back to the embedded defaults.
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// Default returns the embedded default configuration
func Default() (*Config, error) {
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded defaults: %w", err)
	}
	return NewFSLoader(sub, "defaults").LoadAll()
}

// LoadCore loads core.json
func (l *Loader) LoadCore() (*CoreConfig, error) {
	var cfg CoreConfig
	if err := l.load("core.json", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid core.json: %w", err)
	}
	return &cfg, nil
}

// LoadLayout loads layout.json
func (l *Loader) LoadLayout() (*LayoutConfig, error) {
	var cfg LayoutConfig
	if err := l.load("layout.json", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout.json: %w", err)
	}
	return &cfg, nil
}

// LoadAll loads all configurations (core, layout)
func (l *Loader) LoadAll() (*Config, error) {
	core, err := l.LoadCore()
	if err != nil {
		return nil, err
	}

	layout, err := l.LoadLayout()
	if err != nil {
		return nil, err
	}

	return &Config{
		Core:   core,
		Layout: layout,
	}, nil
}

// load decodes the embedded default for name, then overlays the loader's
// copy if it has one. Fields absent from the override keep their defaults.
func (l *Loader) load(name string, v any) error {
	def, err := defaultsFS.ReadFile("defaults/" + name)
	if err != nil {
		return fmt.Errorf("failed to read default %s: %w", name, err)
	}
	if err := json.Unmarshal(def, v); err != nil {
		return fmt.Errorf("failed to parse default %s: %w", name, err)
	}

	data, err := fs.ReadFile(l.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}
