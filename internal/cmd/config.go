package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/beiklive/mytoolmodule/internal/config"
	"github.com/beiklive/mytoolmodule/internal/i18n"
	"github.com/beiklive/mytoolmodule/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify mytool configuration",
	Long: `View or modify mytool configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  mytool config set logging.level debug
  mytool config set logging.output all
  mytool config set logging.max_size_mb 50

Valid keys:
  logging.level          - Threshold: error, warning, info, debug
  logging.output         - Sinks: none, console, file, all
  logging.dir            - Base directory for session directories
  logging.max_size_mb    - Rotation size in megabytes
  logging.max_size_bytes - Rotation size in bytes (overrides max_size_mb)
  logging.color          - Console colors: always, auto, never
  logging.report_caller  - Prefix records with the caller (true/false)
  i18n.dir               - Directory of translation files
  i18n.language          - Active language: EN, CH, JP`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/mytool/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	cfg := config.Get()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}

// configKeys maps each settable key to its value type.
var configKeys = map[string]string{
	"logging.level":          "level",
	"logging.output":         "output",
	"logging.dir":            "string",
	"logging.max_size_mb":    "int",
	"logging.max_size_bytes": "int",
	"logging.color":          "color",
	"logging.report_caller":  "bool",
	"i18n.dir":               "string",
	"i18n.language":          "language",
}

// parseConfigValue validates value for key and converts it to the type
// stored in the config file.
func parseConfigValue(key, value string) (any, error) {
	keyType, ok := configKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'mytool config set --help' to see valid keys", key)
	}

	switch keyType {
	case "level":
		level, err := logging.ParseLevel(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(logging.ValidLevels(), ", "))
		}
		return strings.ToLower(level.String()), nil
	case "output":
		mode, err := logging.ParseOutputMode(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(logging.ValidOutputModes(), ", "))
		}
		return strings.ToLower(mode.String()), nil
	case "color":
		v := strings.ToLower(value)
		for _, valid := range config.ValidColorModes() {
			if v == valid {
				return v, nil
			}
		}
		return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
			key, value, strings.Join(config.ValidColorModes(), ", "))
	case "language":
		lang, err := i18n.ParseLanguage(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		return lang.String(), nil
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return n, nil
	default:
		if value == "" {
			return nil, fmt.Errorf("invalid value for %s: must not be empty", key)
		}
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	typedValue, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}

	configDir := config.ConfigDir()
	if err := appFs.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetFs(appFs)
	viper.Set(key, typedValue)

	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)
	return nil
}

// defaultConfigContent is the commented file written by config init.
const defaultConfigContent = `# mytool configuration

logging:
  # Threshold: error, warning, info, debug
  level: info
  # Sinks: none, console, file, all
  output: console
  # Each run writes into <dir>/<YYYYMMDD_HH_MM_SS_mmm>/
  dir: ./log
  # Rotate the active file once it grows past this size
  max_size_mb: 10
  # Console colors: always, auto, never
  color: always
  # Prefix every record with the calling function and line
  report_caller: false

i18n:
  # Directory holding EN/CH/JP translation files (.json or .yaml)
  dir: ./res/translate
  language: EN
`

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	exists, err := afero.Exists(appFs, configFile)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("config file already exists at %s\nUse 'mytool config set' to modify values", configFile)
	}

	if err := appFs.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(appFs, configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_LOGGING_LEVEL)\n", config.EnvPrefix, config.EnvPrefix)
	return nil
}
