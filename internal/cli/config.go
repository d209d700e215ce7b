package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/bazaar/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir   = "data_dir"
	cfgKeyDelimiter = "delimiter"
	cfgKeyQuoteAll  = "quote_all"
	cfgKeyHeader    = "header"

	envPrefix = "BAZAAR"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# bazaar configuration

# Field delimiter: a single character, or "tab".
delimiter: ","

# Quote every cell instead of only those that need it.
quote_all: false

# Write a header row naming the columns. Without it, only the built-in
# collections can be used and their field lists fix the column order.
header: true

# Data directory (optional; overridable by --data-dir)
# data_dir:
`

// configFile is the structure bazaar init writes to config.yaml.
type configFile struct {
	DataDir   string `yaml:"data_dir,omitempty"`
	Delimiter string `yaml:"delimiter"`
	QuoteAll  bool   `yaml:"quote_all"`
	Header    bool   `yaml:"header"`
}

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. BAZAAR_DELIMITER, BAZAAR_QUOTE_ALL and
// BAZAAR_HEADER override the file.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyDelimiter, ",")
	v.SetDefault(cfgKeyQuoteAll, false)
	v.SetDefault(cfgKeyHeader, true)
	v.SetEnvPrefix(envPrefix)
	// data_dir is not bound: BAZAAR_DATA_DIR ranks below config.yaml.
	for _, key := range []string{cfgKeyDelimiter, cfgKeyQuoteAll, cfgKeyHeader} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile writes defaultConfigYAML unless config.yaml exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// storeConfig builds the store configuration from v for dataDir.
func storeConfig(v *viper.Viper, dataDir string) (types.Config, error) {
	delim, err := parseDelimiter(v.GetString(cfgKeyDelimiter))
	if err != nil {
		return types.Config{}, err
	}
	cfg := types.Config{
		DataDir:   dataDir,
		Delimiter: delim,
		QuoteAll:  v.GetBool(cfgKeyQuoteAll),
		Header:    v.GetBool(cfgKeyHeader),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// parseDelimiter accepts a single character, "tab" or `\t`.
func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("config: %w: %q", types.ErrDelimiterInvalid, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// formatDelimiter is the inverse of parseDelimiter.
func formatDelimiter(r rune) string {
	if r == '\t' {
		return "tab"
	}
	return string(r)
}

// writeConfig replaces config.yaml in configDir with cfg.
func writeConfig(configDir string, cfg types.Config) error {
	data, err := yaml.Marshal(configFile{
		DataDir:   cfg.DataDir,
		Delimiter: formatDelimiter(cfg.Delimiter),
		QuoteAll:  cfg.QuoteAll,
		Header:    cfg.Header,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(configDir, configFileExt), data, 0o644)
}
