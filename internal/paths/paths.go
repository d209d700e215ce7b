// Package paths resolves where the bazaar CLI keeps its configuration and
// collection files.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Directory names used when nothing else is configured.
const (
	appName              = "bazaar"
	DefaultConfigDirName = ".bazaar"
	DefaultDataDirName   = ".bazaar-db"
)

// Environment variables overriding the directories.
const (
	EnvConfigDir = "BAZAAR_CONFIG_DIR"
	EnvDataDir   = "BAZAAR_DATA_DIR"
)

// platform holds the OS lookups, swapped out in tests.
var platform = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// Overrides are the explicitly requested directories, highest precedence
// first. Empty fields are unset.
type Overrides struct {
	ConfigDirFlag string // --config-dir
	DataDirFlag   string // --data-dir
	DataDirConfig string // data_dir from config.yaml
}

// Dirs are resolved absolute directories.
type Dirs struct {
	Config string
	Data   string
}

// Resolve applies the precedence chains:
//
//	config: --config-dir > BAZAAR_CONFIG_DIR > platform default
//	data:   --data-dir > config.yaml data_dir > BAZAAR_DATA_DIR > $(CWD)/.bazaar-db
func Resolve(o Overrides) (Dirs, error) {
	cfg, err := ResolveConfigDir(o.ConfigDirFlag)
	if err != nil {
		return Dirs{}, err
	}
	data, err := ResolveDataDir(o.DataDirFlag, o.DataDirConfig)
	if err != nil {
		return Dirs{}, err
	}
	return Dirs{Config: cfg, Data: data}, nil
}

// ResolveConfigDir returns the configuration directory.
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstSet(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory. configValue is the data_dir
// entry of config.yaml.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstSet(flag, configValue, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := platform.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// DefaultConfigDir returns the per-user configuration directory:
// $XDG_CONFIG_HOME/bazaar or ~/.config/bazaar on Linux, the OS user config
// directory elsewhere.
func DefaultConfigDir() (string, error) {
	if platform.goos != "linux" {
		return userConfigSubdir()
	}
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the per-user data directory:
// $XDG_DATA_HOME/bazaar or ~/.local/share/bazaar on Linux, the OS user
// config directory elsewhere.
func DefaultDataDir() (string, error) {
	if platform.goos != "linux" {
		return userConfigSubdir()
	}
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, homeRel string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := platform.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, appName), nil
}

func userConfigSubdir() (string, error) {
	dir, err := platform.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
