package cmd

import (
	"fmt"

	"ipc-charts/configs"
	"ipc-charts/internal/config"
	"ipc-charts/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const Version = "1.0.0"

type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string
	env        *config.Environment
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "ipc-charts",
		Short:   "Render comparison charts for the message transfer benchmark",
		Long:    "Renders one chart per held benchmark value for each metric, comparing the two-copy, one-copy and zero-copy strategies",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command output (artifact paths) goes to stdout.
			logging.SetOutput(cmd.ErrOrStderr())
			switch opts.logFormat {
			case "text":
				logging.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			case "json":
				logging.SetFormatter(&logrus.JSONFormatter{})
			default:
				return fmt.Errorf("invalid log format %q (want text or json)", opts.logFormat)
			}
			config.LoadDotEnv()

			env, err := config.ParseEnvironment()
			if err != nil {
				return err
			}
			opts.env = env

			level := opts.logLevel
			if level == "" {
				level = env.LogLevel
			}
			if level != "" {
				if err := logging.SetLogLevel(level); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to report configuration file (default: built-in MT25078 report)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(newRenderCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newListCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))

	return rootCmd
}

// Execute runs the command line interface.
func Execute() error {
	return newRootCommand().Execute()
}

// loadReport reads the configured report file, or the embedded default
// when no file was given, and returns it with its raw content.
func (o *rootOptions) loadReport() (*config.ReportConfig, string, error) {
	logger := logging.GetLogger()

	if o.configFile == "" {
		cfg, err := config.Parse(configs.Default)
		if err != nil {
			return nil, "", fmt.Errorf("built-in report: %w", err)
		}
		logger.Debug("Using built-in report configuration")
		return cfg, string(configs.Default), nil
	}

	cfg, content, err := config.LoadConfigWithContent(o.configFile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, content, nil
}

// applyReportLogLevel uses the report's log level unless the flag or the
// environment already chose one.
func (o *rootOptions) applyReportLogLevel(cfg *config.ReportConfig) {
	if o.logLevel != "" || (o.env != nil && o.env.LogLevel != "") {
		return
	}
	logger := logging.GetLogger()
	if err := logging.SetLogLevel(cfg.Report.LogLevel); err != nil {
		logger.WithField("log_level", cfg.Report.LogLevel).WithError(err).Warn("Invalid log level in config, using INFO")
		_ = logging.SetLogLevel("info")
	}
}
