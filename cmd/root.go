// Package cmd wires the ambuild command line interface.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/appmanifest/ambuild/internal/config"
	"github.com/appmanifest/ambuild/internal/log"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ambuild",
	Short: "Application manifest builder",
	Long: `ambuild assembles CycloneDX 1.6 application manifests from a component
declaration and the per-artifact mini-manifests produced by CI builds.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.config/ambuild/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"enable debug logging")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("output_dir", defaults.OutputDir)
	viper.SetDefault("debug", defaults.Debug)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .ambuild/config.yaml (current directory)
		// 2. ~/.config/ambuild/config.yaml (user config)
		if _, err := os.Stat(".ambuild/config.yaml"); err == nil {
			viper.SetConfigFile(".ambuild/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "ambuild"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at ~/.config/ambuild/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			home, homeErr := os.UserHomeDir()
			if homeErr == nil {
				defaultPath := filepath.Join(home, ".config", "ambuild", "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
				// If write fails, just continue with defaults (no config file)
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func setupLogging(_ *cobra.Command, _ []string) error {
	if !debugFlag && !cfg.Debug {
		return nil
	}

	log.SetEnabled(true)
	log.SetMinLevel(log.LevelDebug)
	if cfg.LogFile != "" {
		cleanup, err := log.Init(cfg.LogFile)
		if err != nil {
			return err
		}
		cobra.OnFinalize(cleanup)
	}
	log.Debug(log.CatConfig, "Logging initialized", "config", viper.ConfigFileUsed())
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
