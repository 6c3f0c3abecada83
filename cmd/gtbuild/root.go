package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gtbuild",
	Short: "Build ground-truth documents from CVAT page annotations",
	Long: `gtbuild turns CVAT annotation exports into structured ground-truth
documents for layout-analysis evaluation.

For each annotated page image it:
  - classifies the annotation boxes and relation polylines
  - walks the reading order into an ordered document
  - extracts text for every box from the source PDF's parsed cells
  - reconciles table regions against a reference document by overlap
  - crops picture payloads out of the page render

Every flag can also be set in the config file (underscored key, e.g.
iou_cutoff) or as a GTBUILD_-prefixed environment variable; an explicit
flag wins over both.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./gtbuild.yaml)",
	)
	rootCmd.PersistentFlags().String(
		"log-level", "info", "log level: debug, info, warn, error",
	)
	bindRootFlags()

	rootCmd.AddCommand(buildCmd)
}

// bindRootFlags registers the root flags as viper keys, making the flag
// defaults the bottom of the precedence order (flag > env > config file >
// default).
func bindRootFlags() {
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig wires viper: an optional config file and GTBUILD_-prefixed
// environment variables layered over the bound flag values.
func initConfig() error {
	viper.SetEnvPrefix("GTBUILD")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gtbuild")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	// Config file is optional unless named explicitly; a missing implicit
	// gtbuild.yaml surfaces as ConfigFileNotFoundError and is fine.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// newLogger builds the process logger from the effective log_level value.
func newLogger() (*slog.Logger, error) {
	logLevel := viper.GetString("log_level")
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})), nil
}
