// Package config loads tkt configuration from JSONC files and CLI flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/tkt/internal/ticket"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	TicketDir            string   `json:"ticket_dir"`
	Template             string   `json:"template,omitempty"`
	StatusOptions        []string `json:"status_options,omitempty"`
	PriorityOptions      []string `json:"priority_options,omitempty"`
	ShortSectionSeverity string   `json:"short_section_severity,omitempty"`
	HeaderStyle          string   `json:"header_style,omitempty"`
	Lock                 *bool    `json:"lock,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	TicketDirAbs string `json:"-"` // Absolute path to ticket directory
	TemplateAbs  string `json:"-"` // Absolute path to the template file

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	lock := true

	return Config{
		TicketDir:            "tickets",
		Template:             DefaultTemplatePath,
		StatusOptions:        []string{"open", "in_progress", "review", "done"},
		PriorityOptions:      []string{"low", "medium", "high", "critical"},
		ShortSectionSeverity: ticket.SeverityError.String(),
		HeaderStyle:          ticket.HeaderNormalize.String(),
		Lock:                 &lock,
	}
}

const (
	// ConfigFileName is the default project config file name.
	ConfigFileName = ".tkt.json"

	// DefaultTemplatePath is where the template is looked up, relative to the
	// working directory.
	DefaultTemplatePath = ".tkt/template.md"
)

// LockEnabled reports whether writes take the per-file lock.
func (c Config) LockEnabled() bool {
	return c.Lock == nil || *c.Lock
}

// Severity returns where short-section findings are reported.
func (c Config) Severity() ticket.Severity {
	sev, _ := ticket.ParseSeverity(c.ShortSectionSeverity)

	return sev
}

// Style returns how the fixer writes header changes.
func (c Config) Style() ticket.HeaderStyle {
	style, _ := ticket.ParseHeaderStyle(c.HeaderStyle)

	return style
}

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/tkt/config.json if set, otherwise ~/.config/tkt/config.json.
// Returns empty string if home directory cannot be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "tkt", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "tkt", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride   string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath        string            // -c/--config flag value
	TicketDirOverride *string           // --ticket-dir flag value; nil means no override
	Env               map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/tkt/config.json or $XDG_CONFIG_HOME/tkt/config.json)
// 3. Project config file at default location (.tkt.json, if exists)
// 4. Explicit config file via configPath (if non-empty)
// 5. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if input.TicketDirOverride != nil {
		cfg.TicketDir = *input.TicketDirOverride
	}

	err = validateConfig(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir
	cfg.TicketDirAbs = absPath(workDir, cfg.TicketDir)
	cfg.TemplateAbs = absPath(workDir, cfg.Template)

	return cfg, nil
}

func absPath(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}

// loadGlobalConfig loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobalConfig(env map[string]string) (Config, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, "", nil
	}

	globalCfg, explicitEmpty, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["ticket_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, globalCfgPath, ErrTicketDirEmpty)
	}

	return globalCfg, globalCfgPath, nil
}

// loadProjectConfig loads the project config file (.tkt.json) or an explicit config file.
// Returns the config, the path if loaded, and any error.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	cfgFile := filepath.Join(workDir, ConfigFileName)
	mustExist := false

	if configPath != "" {
		cfgFile = absPath(workDir, configPath)
		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	}

	fileCfg, explicitEmpty, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["ticket_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, ErrTicketDirEmpty)
	}

	return fileCfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files return zero config.
// Returns the config, a map of explicitly empty fields, whether file was loaded, and any error.
func loadConfigFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, nil, false, nil
		}

		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, explicitEmpty, true, nil
}

func parseConfig(data []byte) (Config, map[string]bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	// Check which fields were explicitly set to empty
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["ticket_dir"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["ticket_dir"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.TicketDir != "" {
		base.TicketDir = overlay.TicketDir
	}

	if overlay.Template != "" {
		base.Template = overlay.Template
	}

	if overlay.StatusOptions != nil {
		base.StatusOptions = overlay.StatusOptions
	}

	if overlay.PriorityOptions != nil {
		base.PriorityOptions = overlay.PriorityOptions
	}

	if overlay.ShortSectionSeverity != "" {
		base.ShortSectionSeverity = overlay.ShortSectionSeverity
	}

	if overlay.HeaderStyle != "" {
		base.HeaderStyle = overlay.HeaderStyle
	}

	if overlay.Lock != nil {
		base.Lock = overlay.Lock
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.TicketDir == "" {
		return ErrTicketDirEmpty
	}

	if _, err := ticket.ParseSeverity(cfg.ShortSectionSeverity); err != nil {
		return fmt.Errorf("%w: short_section_severity: %w", ErrConfigInvalid, err)
	}

	if _, err := ticket.ParseHeaderStyle(cfg.HeaderStyle); err != nil {
		return fmt.Errorf("%w: header_style: %w", ErrConfigInvalid, err)
	}

	return nil
}
