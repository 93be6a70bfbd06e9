// Package config provides configuration for the zettel binary.
// Loads from: CLI flags > env vars > .zettel/config.toml > built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	// ErrNoRootDir is returned when no vault directory was configured.
	ErrNoRootDir = errors.New("no vault directory configured: set root_dir in .zettel/config.toml, ZETTEL_ROOT_DIR, or --root")
	// ErrRootTooBroad is returned for vault roots like / or /home that would scan far too much.
	ErrRootTooBroad = errors.New("vault directory is too broad")
)

// Config holds all zettel configuration, loaded from TOML + env + flags.
type Config struct {
	Vault VaultConfig `toml:"vault"`
	Log   LogConfig   `toml:"log"`
	MCP   MCPConfig   `toml:"mcp"`
}

// VaultConfig holds vault-related settings.
type VaultConfig struct {
	RootDir string `toml:"root_dir"` // directory to scan for notes (flat, non-recursive)
	Lookup  string `toml:"lookup"`   // note name `zettel find` reports when called without an argument
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn" (default), "error"
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	ReloadCooldown time.Duration `toml:"reload_cooldown"`
}

// Overrides carries values from CLI flags. Empty fields leave lower
// priority sources in effect.
type Overrides struct {
	ConfigPath string
	RootDir    string
	LogLevel   string
	Verbose    bool
}

// warnOut receives unknown-key warnings.
var warnOut io.Writer = os.Stderr

// DefaultConfig returns a Config with all built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "warn",
		},
		MCP: MCPConfig{
			ReloadCooldown: 10 * time.Second,
		},
	}
}

// Load merges all configuration sources: defaults < TOML file < env vars < flags.
// The root directory is resolved to an absolute path but not validated; call
// Validate before scanning.
func Load(o Overrides) (*Config, error) {
	cfg := DefaultConfig()

	configPath, explicit := o.ConfigPath, o.ConfigPath != ""
	if !explicit {
		if v := os.Getenv("ZETTEL_CONFIG"); v != "" {
			configPath, explicit = v, true
		}
	}
	if !explicit {
		rootHint := o.RootDir
		if rootHint == "" {
			rootHint = os.Getenv("ZETTEL_ROOT_DIR")
		}
		configPath = findConfigFile(rootHint)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			if explicit {
				return nil, fmt.Errorf("config %s: %w", configPath, err)
			}
		} else {
			meta, err := toml.DecodeFile(configPath, cfg)
			if err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
			warnUnknownKeys(meta, configPath)
		}
	}

	// Environment variables override TOML values
	if v := os.Getenv("ZETTEL_ROOT_DIR"); v != "" {
		cfg.Vault.RootDir = v
	}
	if v := os.Getenv("ZETTEL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// CLI flags override everything
	if o.RootDir != "" {
		cfg.Vault.RootDir = o.RootDir
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	if cfg.Vault.RootDir != "" {
		cfg.Vault.RootDir = resolvePath(cfg.Vault.RootDir)
	}
	if cfg.MCP.ReloadCooldown < 0 {
		cfg.MCP.ReloadCooldown = 0
	}

	return cfg, nil
}

// Validate checks that the configuration can drive a vault scan.
func (c *Config) Validate() error {
	if c.Vault.RootDir == "" {
		return ErrNoRootDir
	}
	return validateRootDir(c.Vault.RootDir)
}

// findConfigFile looks for .zettel/config.toml in the vault root, then CWD.
func findConfigFile(rootHint string) string {
	if rootHint != "" {
		p := ConfigFilePath(resolvePath(rootHint))
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		p := ConfigFilePath(cwd)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// ConfigFilePath returns where the config file lives for the given vault root.
func ConfigFilePath(rootDir string) string {
	return filepath.Join(rootDir, ".zettel", "config.toml")
}

// Show returns the effective configuration as TOML.
func Show(cfg *Config) string {
	var b strings.Builder
	b.WriteString("# Effective zettel configuration (merged from all sources)\n\n")
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Sprintf("# Error encoding config: %v\n", err)
	}
	return b.String()
}

// configSuggestions maps common wrong keys to the correct TOML key name.
var configSuggestions = map[string]string{
	"workdir":   "root_dir",
	"work_dir":  "root_dir",
	"root":      "root_dir",
	"rootdir":   "root_dir",
	"root-dir":  "root_dir",
	"path":      "root_dir",
	"vault_dir": "root_dir",
	"loglevel":  "level",
	"log_level": "level",
	"cooldown":  "reload_cooldown",
}

// warnUnknownKeys prints warnings for unrecognized config keys.
func warnUnknownKeys(meta toml.MetaData, configPath string) {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return
	}

	fname := filepath.Base(configPath)
	for _, key := range undecoded {
		keyStr := key.String()
		lastPart := key[len(key)-1]

		if suggestion, ok := configSuggestions[lastPart]; ok {
			fmt.Fprintf(warnOut, "zettel: WARNING: unknown key %q in %s, did you mean %q?\n",
				keyStr, fname, suggestion)
		} else {
			fmt.Fprintf(warnOut, "zettel: WARNING: unknown key %q in %s (will be ignored)\n",
				keyStr, fname)
		}
	}
}

// resolvePath expands a leading ~ and makes the path absolute.
func resolvePath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// validateRootDir rejects roots that are too broad (e.g., /, /home, /Users),
// including symlinks that resolve to one.
func validateRootDir(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	dangerous := []string{"/", "/home", "/Users", "/tmp", "/var", "/etc", "/opt"}
	if runtime.GOOS == "windows" && len(abs) >= 3 {
		driveRoot := abs[:3]
		dangerous = append(dangerous, driveRoot, filepath.Join(driveRoot, "Users"), filepath.Join(driveRoot, "Windows"))
	}
	for _, d := range dangerous {
		if abs == d {
			return fmt.Errorf("%w: %s", ErrRootTooBroad, abs)
		}
	}

	// Path may not exist yet; the scan reports that itself.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil
	}
	for _, d := range dangerous {
		if resolved == d {
			return fmt.Errorf("%w: %s resolves to %s", ErrRootTooBroad, abs, resolved)
		}
		if resolvedDangerous, err := filepath.EvalSymlinks(d); err == nil && resolved == resolvedDangerous {
			return fmt.Errorf("%w: %s resolves to %s", ErrRootTooBroad, abs, resolved)
		}
	}
	return nil
}
