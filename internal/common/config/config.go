package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported config format: use .yaml, .yml, .toml or .json")
	ErrInvalidTimeout    = errors.New("invalid timeout")
	ErrEmptyAURHelper    = errors.New("aur_helpers contains an empty entry")
	ErrConfigExists      = errors.New("config file already exists")
)

// Source keys used by the glyphs and labels tables
const (
	KeyOfficial = "official"
	KeyAUR      = "aur"
	KeyFlatpak  = "flatpak"
	KeySnap     = "snap"
	KeyBrew     = "brew"
)

// DefaultTerminal is used when neither the config nor $TERMINAL names one
const DefaultTerminal = "kitty"

var defaultTerminalArgs = []string{"--title", "systemupdate"}

// Config represents the application configuration
type Config struct {
	Terminal   TerminalConfig    `yaml:"terminal" toml:"terminal" json:"terminal"`
	AURHelpers []string          `yaml:"aur_helpers" toml:"aur_helpers" json:"aur_helpers"`
	Glyphs     map[string]string `yaml:"glyphs" toml:"glyphs" json:"glyphs"`
	Labels     map[string]string `yaml:"labels" toml:"labels" json:"labels"`
	Timeout    string            `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty"` // e.g. "90s", empty = wait forever
	LogFile    bool              `yaml:"log_file" toml:"log_file" json:"log_file"`
}

// TerminalConfig describes the terminal emulator used by apply mode.
// The upgrade script is appended as: <command> <args...> sh -c <script>
type TerminalConfig struct {
	Command string   `yaml:"command" toml:"command" json:"command"`
	Args    []string `yaml:"args" toml:"args" json:"args"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		AURHelpers: []string{"paru", "yay"},
		Glyphs: map[string]string{
			KeyOfficial: "󱓽",
			KeyAUR:      "󱓾",
			KeyFlatpak:  "󰏗",
			KeySnap:     "󰏖",
			KeyBrew:     "󰂘",
		},
		Labels: map[string]string{
			KeyOfficial: "Official",
			KeyAUR:      "AUR",
			KeyFlatpak:  "Flatpak",
			KeySnap:     "Snap",
			KeyBrew:     "Brew",
		},
	}
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/sysupdates/config.{yaml,toml,json} (XDG standard - priority)
// 2. ~/.sysupdates/config.yaml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	// Check XDG_CONFIG_HOME first, fallback to ~/.config
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	dir := filepath.Join(xdgConfig, "sysupdates")
	return []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "config.json"),
		filepath.Join(home, ".sysupdates", "config.yaml"),
	}, nil
}

// DefaultConfigPath returns the default config file path (XDG standard)
func DefaultConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// FindConfigPath returns the first existing config file path
// Returns the default path if no config file exists yet
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return paths[0], nil
}

// Load reads configuration from the first available config file
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path.
// A missing file yields the defaults; nothing is written to disk.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	switch formatOf(path) {
	case "yaml":
		err = yaml.Unmarshal(data, &cfg)
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	case "json":
		err = json.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// SaveTo writes configuration to a specific file path, encoded by extension
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch formatOf(path) {
	case "yaml":
		data, err = yaml.Marshal(c)
	case "toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(c)
		data = buf.Bytes()
	case "json":
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Init writes the default configuration to path, refusing to overwrite
// an existing file unless force is set
func Init(path string, force bool) (*Config, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return nil, fmt.Errorf("%s: %w", path, ErrConfigExists)
	}
	cfg := Default()
	if err := cfg.SaveTo(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks fields that cannot be defaulted
func (c *Config) Validate() error {
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	for _, helper := range c.AURHelpers {
		if strings.TrimSpace(helper) == "" {
			return ErrEmptyAURHelper
		}
	}
	return nil
}

// TimeoutDuration returns the per-command timeout, zero meaning none
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidTimeout, c.Timeout)
	}
	return d, nil
}

// TerminalCommand returns the terminal executable and its leading arguments.
// An unset command falls back to $TERMINAL, then to DefaultTerminal.
func (c *Config) TerminalCommand() (string, []string) {
	if c.Terminal.Command != "" {
		return c.Terminal.Command, append([]string(nil), c.Terminal.Args...)
	}
	if term := os.Getenv("TERMINAL"); term != "" {
		return term, append([]string(nil), c.Terminal.Args...)
	}
	if len(c.Terminal.Args) == 0 {
		return DefaultTerminal, append([]string(nil), defaultTerminalArgs...)
	}
	return DefaultTerminal, append([]string(nil), c.Terminal.Args...)
}

// Glyph returns the glyph for a source key
func (c *Config) Glyph(key string) string {
	return c.Glyphs[key]
}

// Label returns the label for a source key
func (c *Config) Label(key string) string {
	if label, ok := c.Labels[key]; ok && label != "" {
		return label
	}
	return key
}

// applyDefaults fills fields a partial config file left out
func (c *Config) applyDefaults() {
	def := Default()

	if c.AURHelpers == nil {
		c.AURHelpers = def.AURHelpers
	}
	if c.Glyphs == nil {
		c.Glyphs = make(map[string]string)
	}
	for key, glyph := range def.Glyphs {
		if _, ok := c.Glyphs[key]; !ok {
			c.Glyphs[key] = glyph
		}
	}
	if c.Labels == nil {
		c.Labels = make(map[string]string)
	}
	for key, label := range def.Labels {
		if _, ok := c.Labels[key]; !ok {
			c.Labels[key] = label
		}
	}
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return ""
	}
}
