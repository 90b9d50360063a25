package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"qtermtape/qasm"
	"qtermtape/tape"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	config Config
	logger *slog.Logger
	loaded bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the qtape CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "qtape",
		Short: "qtape - quantum tape rewriter",
		Long: `Record quantum circuits from OpenQASM 2.0, fuse runs of single-qubit
rotations into one Rot gate per run, and inspect the result as QASM,
a text drawing, or a state-vector equivalence check.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+DefaultConfigPath+")")

	cmd.AddCommand(NewFuseCommand(opts))
	cmd.AddCommand(NewDrawCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewTemplateCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// setup validates global flags and loads the config and logger once.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if o.loaded {
		return nil
	}
	if o.Format == "" {
		o.Format = "text"
	}
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	path, explicit := o.ConfigPath, o.ConfigPath != ""
	if !explicit {
		path = DefaultConfigPath
	}
	cfg, err := LoadConfig(path, explicit)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, o.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	o.config = cfg
	o.logger = logger
	o.loaded = true
	logger.Debug("config loaded", "path", path, "atol", cfg.Fusion.Atol, "exclude", cfg.Fusion.Exclude)
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// readSource reads a QASM program from the file named by args, or from
// stdin when args is empty or "-".
func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", WrapExitError(ExitCommandError, "read stdin", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", WrapExitError(ExitCommandError, "read input", err)
	}
	return string(data), nil
}

// loadTape reads and parses the QASM input of a command.
func loadTape(cmd *cobra.Command, args []string) (*tape.Tape, error) {
	src, err := readSource(cmd, args)
	if err != nil {
		return nil, err
	}
	t, err := qasm.Parse(src)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "parse QASM", err)
	}
	return t, nil
}
