// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the stream-mapper CLI. Each pipeline
// stage is a subcommand: corpus for ingestion, run for clustering, results
// for inspecting and exporting a finished run.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/stream-mapper/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is the process-wide logger, configured in the root PersistentPreRun.
var logger zerolog.Logger

// rootCmd is the base command for the stream-mapper CLI.
var rootCmd = &cobra.Command{
	Use:   "stream-mapper",
	Short: "Map a scholarly corpus into a hierarchy of research streams",
	Long: `stream-mapper clusters a corpus of scholarly documents into a two- or
three-level hierarchy of research streams. Text similarity comes from TF-IDF
features projected into a latent semantic space; when enough documents carry
reference lists, a bibliographic-coupling signal is blended in.

Each stage is a subcommand: corpus ingests records into the local index, run
executes a clustering pass, and results inspects or exports the output.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is the normal case.
		_ = godotenv.Load()

		level := zerolog.InfoLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./stream-mapper.yaml or ~/.config/stream-mapper/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("stream-mapper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "stream-mapper"))
		}
	}

	viper.SetEnvPrefix("STREAM_MAPPER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadPipelineConfig layers the discovered config file over the defaults.
// Flags on individual subcommands override both.
func loadPipelineConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()

	path := viper.ConfigFileUsed()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
