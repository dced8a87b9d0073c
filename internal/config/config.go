// Package config loads and saves the emulator's TOML configuration file,
// adapted directly from the teacher's config.Config: same DefaultConfig/
// Load/Save shape and platform-specific path resolution, with GBA-specific
// sections in place of the teacher's assembly-debugger ones (§3.1).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the emulator configuration.
type Config struct {
	// Execution settings: headless-run limits and BIOS handling.
	Execution struct {
		MaxFrames                 uint64 `toml:"max_frames"`
		InstructionBudgetPerFrame uint64 `toml:"instruction_budget_per_frame"`
		BIOSPath                  string `toml:"bios_path"`
		SkipBIOSIntro             bool   `toml:"skip_bios_intro"`
		EnableTrace               bool   `toml:"enable_trace"`
	} `toml:"execution"`

	// Display settings: the viewer's scale factor and color handling.
	Display struct {
		Scale           int  `toml:"scale"`
		ColorCorrection bool `toml:"color_correction"`
		VSync           bool `toml:"vsync"`
	} `toml:"display"`

	// Debugger settings: console history and breakpoint persistence.
	Debugger struct {
		HistorySize    int    `toml:"history_size"`
		BreakpointFile string `toml:"breakpoint_file"`
		AutoSaveBreaks bool   `toml:"auto_save_breakpoints"`
		ShowRegisters  bool   `toml:"show_registers"`
	} `toml:"debugger"`

	// Cartridge settings: a backup-type override for titles the loader's
	// title database and header heuristic both fail to resolve.
	Cartridge struct {
		BackupOverride string `toml:"backup_override"` // "", "sram", "flash512", "flash1m", "eeprom4k", "eeprom64k"
	} `toml:"cartridge"`

	// Trace settings: instruction/bus trace sink, matching the teacher's
	// Trace section.
	Trace struct {
		OutputFile string `toml:"output_file"`
		IncludeBus bool   `toml:"include_bus"`
		MaxEntries int    `toml:"max_entries"`
	} `toml:"trace"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxFrames = 0 // 0 means unbounded
	cfg.Execution.InstructionBudgetPerFrame = 0
	cfg.Execution.BIOSPath = ""
	cfg.Execution.SkipBIOSIntro = true
	cfg.Execution.EnableTrace = false

	cfg.Display.Scale = 3
	cfg.Display.ColorCorrection = false
	cfg.Display.VSync = true

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.BreakpointFile = "breakpoints.toml"
	cfg.Debugger.AutoSaveBreaks = true
	cfg.Debugger.ShowRegisters = true

	cfg.Cartridge.BackupOverride = ""

	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.IncludeBus = false
	cfg.Trace.MaxEntries = 100000

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "gba-emu")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "gba-emu")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "gba-emu", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "gba-emu", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing file
// is not an error: the defaults are returned as-is.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %q: %w", path, err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("config: failed to create directory %q: %w", dir, err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("config: failed to create %q: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("config: failed to encode: %w", err)
	}

	return nil
}
