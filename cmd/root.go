// Package cmd provides the calcdir command-line interface.
//
// Configuration System:
//
//	Values are resolved with the following precedence:
//	1. Command-line flags (--config, --port, --log-level, ...) - highest priority
//	2. Individual environment variables (CALCDIR_SERVER_PORT, ...)
//	3. The configuration file named by --config or CALCDIR_CONFIG_FILE
//	4. .calcdir.yml in the current directory
//	5. Built-in defaults - lowest priority
//
// Relative paths in a configuration file are resolved against the file's
// directory, so a project can be driven from anywhere with --config.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quick-calculator/calcdir/internal/config"
	"github.com/quick-calculator/calcdir/internal/logging"
	"github.com/quick-calculator/calcdir/internal/services"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "calcdir",
	Short: "Content, localization and publishing tooling for a calculator directory",
	Long: `calcdir loads a directory of calculator content documents, resolves slugs,
enforces the locale availability policy, validates translations and
component registrations, and renders or publishes localized pages.

Quick Start:
  calcdir init                    Create a project skeleton
  calcdir validate                Check translations and components
  calcdir render es bmi-calculator
  calcdir build                   Write the static site
  calcdir serve --watch           Preview with live reload`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .calcdir.yml, can also use CALCDIR_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig points viper at the configuration file and enables
// CALCDIR_<SECTION>_<KEY> environment overrides.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("CALCDIR_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(services.ConfigFileName, ".yml"))
	}

	viper.SetEnvPrefix("CALCDIR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the configuration file, if any, and decodes it. A named
// file that cannot be read is an error; a missing default file is not.
func loadConfig() (*config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || os.Getenv("CALCDIR_CONFIG_FILE") != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if used := viper.ConfigFileUsed(); used != "" {
		cfg.ResolvePaths(filepath.Dir(used))
	}

	return cfg, nil
}

// newLogger builds the stderr logger described by the configuration.
func newLogger(cfg *config.Config) logging.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// setup loads the configuration and logger shared by every command.
func setup() (*config.Config, logging.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	return cfg, newLogger(cfg), nil
}
