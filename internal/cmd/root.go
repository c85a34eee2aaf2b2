package cmd

import (
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/beiklive/mytoolmodule/internal/config"
	"github.com/beiklive/mytoolmodule/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "mytool",
	Short: "Leveled console and rotating file logging toolkit",
	Long: `mytool drives a leveled logging engine that writes to the console and to
size-rotated files under a per-run session directory, and ships helpers to
inspect those logs, look up translations and scan JSON documents.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupLogger,
	PersistentPostRunE: closeLogger,
}

var (
	flagLogLevel    string
	flagWatchConfig bool
)

// appFs is the filesystem used for log files and inputs; tests swap in an
// in-memory one.
var appFs afero.Fs = afero.NewOsFs()

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/mytool/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: ERROR, WARNING, INFO or DEBUG (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagWatchConfig, "watch-config", false, "re-apply logging settings when the config file changes")
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(config.EnvPrefix)
	// e.g., MYTOOL_LOGGING_LEVEL for logging.level
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// setupLogger builds the process-wide logger from the config and flags.
// Console output goes to the command's output so tests can capture it.
func setupLogger(cmd *cobra.Command, _ []string) error {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Default()
	}

	opts := append(cfg.Logging.Options(), logging.WithConsole(cmd.OutOrStdout()), logging.WithFs(appFs))
	var levelErr error
	if flagLogLevel != "" {
		level, err := logging.ParseLevel(flagLogLevel)
		levelErr = err
		opts = append(opts, logging.WithLevel(level))
	}

	logger := logging.New(opts...)
	if prev := logging.SetDefault(logger); prev != nil {
		_ = prev.Close()
	}

	if cfgErr != nil {
		logger.Warning("Invalid configuration, using defaults: {}", cfgErr)
	}
	if levelErr != nil {
		logger.Warning("Unknown log level {}, using INFO", flagLogLevel)
	}

	if flagWatchConfig && viper.ConfigFileUsed() != "" {
		config.Watch(func(c *config.Config, err error) {
			if err == nil {
				err = c.Logging.Apply(logger)
			}
			if err != nil {
				logger.Warning("Config reload failed: {}", err)
				return
			}
			logger.Info("Reloaded logging settings from {}", viper.ConfigFileUsed())
		})
	}
	return nil
}

func closeLogger(_ *cobra.Command, _ []string) error {
	return logging.Default().Close()
}
