package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/dimarray/internal/config"
	"github.com/roach88/dimarray/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // config file path

	// Settings is the loaded configuration. Nil when a command runs
	// without the root command, in which case defaults apply.
	Settings *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dimarray CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "dimarray",
		Version: ir.ToolVersion,
		Short:   "dimarray - labeled N-d array schemas",
		Long: `Declare labeled N-dimensional array schemas in CUE and convert field
values into DataArrays: data tagged with dimension names, coordinates,
attributes and a name.`,
		SilenceErrors: true, // main prints errors the commands have not already reported
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyConfig(opts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (yaml, toml or json)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// applyConfig loads the config file and environment, lets explicitly set
// flags win, validates the result and installs the default logger.
func applyConfig(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	opts.Settings = cfg

	if !cmd.Flags().Changed("format") {
		opts.Format = cfg.Format
	}
	if !cmd.Flags().Changed("verbose") {
		opts.Verbose = cfg.Verbose
	}

	if !isValidFormat(opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
	}

	slog.SetDefault(newLogger(cmd.ErrOrStderr(), opts.Verbose))
	return nil
}

// newLogger returns a text logger on w; debug records appear only when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// specsDir returns the specs directory argument, falling back to configuration.
func (o *RootOptions) specsDir(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if o.Settings != nil {
		return o.Settings.SpecsDir
	}
	return config.Default().SpecsDir
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
