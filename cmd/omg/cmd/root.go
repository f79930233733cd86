package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenModelica/OMGraphics/internal/config"
	"github.com/OpenModelica/OMGraphics/pkg/diagram"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

var (
	verbose    bool
	configPath string

	settings *config.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "omg",
	Short: "Modelica graphical annotation tool",
	Long: `omg reads, renders and edits the Icon and Diagram annotations of
Modelica classes.

A layer file holds one annotation such as
  Icon(coordinateSystem(extent={{-100,-100},{100,100}}), graphics={Rectangle(...)})

Examples:
  omg format resistor.icon
  omg info resistor.icon
  omg render resistor.icon -o resistor.png --width 400 --height 400
  omg edit resistor.icon moves.sexp -o moved.icon
  omg view resistor.icon
  omg grep Rectangle ./Modelica`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		path := configPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				logger.Debug("no user config directory", "error", err)
				settings = config.Default()
				return nil
			}
			path = p
		}
		s, err := config.Load(path)
		if err != nil {
			return err
		}
		logger.Debug("settings loaded", "path", path)
		settings = s
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default is the user config directory)")
}

// loadLayer parses a layer file. Recoverable shape errors are logged and
// the layer is still returned.
func loadLayer(path string) (*diagram.Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := diagram.ParseLayer(string(data), &shape.Options{ClassFileName: path, Logger: logger})
	if l == nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err != nil {
		logger.Warn("layer parsed with errors", "file", path, "error", err)
	}
	return l, nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-"
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
