package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "siemcac",
	Short: "Configuration-as-code for SIEM fleets",
	Long: `siemcac manages SIEM fleet configuration as versioned templates.
Templates inherit from each other through an extends chain; siemcac
resolves a chain into one configuration document, validates it, and
deploys it node by node through the director API.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.siemcac.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("templates", "templates", "directory holding template documents")
	rootCmd.PersistentFlags().String("fleet", "fleet.yaml", "fleet inventory file")
	rootCmd.PersistentFlags().String("director-url", "", "director API base URL")

	_ = viper.BindPFlag("templates.dir", rootCmd.PersistentFlags().Lookup("templates"))
	_ = viper.BindPFlag("fleet.file", rootCmd.PersistentFlags().Lookup("fleet"))
	_ = viper.BindPFlag("director.url", rootCmd.PersistentFlags().Lookup("director-url"))
}

// initConfig loads configuration from the config file and environment.
// The director token is only ever read from config or SIEMCAC_DIRECTOR_TOKEN,
// never from a flag, so it cannot leak into shell history.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("failed to find home directory", "error", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".siemcac")
	}

	viper.SetEnvPrefix("SIEMCAC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
