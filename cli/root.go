package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/counttype/config"
	"github.com/yoanbernabeu/counttype/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "counttype",
	Short: "Count token types across the text files of a directory",
	Long: `counttype scans a directory of text files, splits each file on whitespace
and accumulates a vocabulary of every word it sees.

After each file it records the cumulative number of distinct words
(types), and optionally the elapsed time, in single-column logs that
the graph command turns into line charts. The full vocabulary is
written once as JSON at the end of the run.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./"+config.DefaultFileName+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
}

// setup loads the configuration and builds the logger shared by every
// command.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		loaded.Logging.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		loaded.Logging.Format = logFormat
	}

	l, err := logging.New(logging.Options{
		Level:  loaded.Logging.Level,
		Format: loaded.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	cfg = loaded
	logger = l
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which commands use to
// stop between files on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// GetRootCmd returns the root command, for documentation generation.
func GetRootCmd() *cobra.Command {
	return rootCmd
}
