// Package config loads daemon and CLI configuration from HuJSON files.
//
// Configuration is resolved once at entry and passed explicitly into the
// scan and reconcile entry points. The engine never reads ambient global
// state, so a background pass and a user-initiated mutation always see the
// configuration their caller resolved.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrVaultDirEmpty      = errors.New("vault-dir cannot be empty")
	ErrIntervalInvalid    = errors.New("check_interval_minutes must be positive")
)

// Defaults.
const (
	// DefaultCheckIntervalMinutes matches the platform minimum for
	// background fetch style triggers.
	DefaultCheckIntervalMinutes = 15

	// DefaultReminderFolder is where standalone reminders are created.
	DefaultReminderFolder = "Reminders"
)

// ConfigFileName is the per-vault config file name.
const ConfigFileName = ".remind.json"

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	VaultDir             string `json:"vault_dir"`
	ScanFolder           string `json:"scan_folder,omitempty"`
	DefaultFolder        string `json:"default_folder,omitempty"`
	CheckIntervalMinutes int    `json:"check_interval_minutes,omitempty"`
	LogLevel             string `json:"log_level,omitempty"`

	// Resolved paths (computed, not serialized)
	VaultDirAbs string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global string // Path to global config if loaded, empty otherwise
	Vault  string // Path to vault/explicit config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DefaultFolder:        DefaultReminderFolder,
		CheckIntervalMinutes: DefaultCheckIntervalMinutes,
	}
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride  string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath       string            // -c/--config flag value
	VaultDirOverride string            // --vault flag value; empty means no override
	Env              map[string]string // environment variables
}

// Load resolves configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/remind/config.json or ~/.config/remind/config.json)
// 3. Vault config at the default location (.remind.json in the working directory, if present)
// 4. Explicit config file via ConfigPath (if non-empty)
// 5. CLI overrides.
//
// VaultDir in the returned Config is resolved to an absolute path.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = merge(cfg, globalCfg)

	vaultCfg, vaultPath, err := loadVaultConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Vault = vaultPath
	cfg = merge(cfg, vaultCfg)

	if input.VaultDirOverride != "" {
		cfg.VaultDir = input.VaultDirOverride
	}

	err = validate(cfg)
	if err != nil {
		return Config{}, err
	}

	if filepath.IsAbs(cfg.VaultDir) {
		cfg.VaultDirAbs = cfg.VaultDir
	} else {
		cfg.VaultDirAbs = filepath.Join(workDir, cfg.VaultDir)
	}

	return cfg, nil
}

// getGlobalConfigPath returns the path to the global config file.
// Returns empty string if no home directory can be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "remind", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "remind", "config.json")
	}

	return ""
}

func loadGlobalConfig(env map[string]string) (Config, string, error) {
	path := getGlobalConfigPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, loaded, err := loadConfigFile(path, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return cfg, path, nil
}

func loadVaultConfig(workDir, configPath string) (Config, string, error) {
	var (
		cfgFile   string
		mustExist bool
	)

	if configPath != "" {
		// Explicit config file - must exist
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		cfgFile = filepath.Join(workDir, ConfigFileName)
	}

	cfg, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return cfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files
// return a zero config.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}

		return Config{}, false, nil
	}

	cfg, parseErr := parse(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.VaultDir != "" {
		base.VaultDir = overlay.VaultDir
	}

	if overlay.ScanFolder != "" {
		base.ScanFolder = overlay.ScanFolder
	}

	if overlay.DefaultFolder != "" {
		base.DefaultFolder = overlay.DefaultFolder
	}

	if overlay.CheckIntervalMinutes != 0 {
		base.CheckIntervalMinutes = overlay.CheckIntervalMinutes
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	return base
}

func validate(cfg Config) error {
	if cfg.VaultDir == "" {
		return ErrVaultDirEmpty
	}

	if cfg.CheckIntervalMinutes <= 0 {
		return ErrIntervalInvalid
	}

	return nil
}
