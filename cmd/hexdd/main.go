package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/TimelordUK/hexdd/internal/config"
	"github.com/TimelordUK/hexdd/internal/dump"
	"github.com/TimelordUK/hexdd/internal/fault"
	"github.com/TimelordUK/hexdd/internal/render"
	"github.com/TimelordUK/hexdd/internal/source"
	"github.com/TimelordUK/hexdd/internal/ui"
)

const version = "0.3.0"

// Environment variable naming a file to log to; logging is off without it
const logEnv = "HEXDD_LOG"

func main() {
	cleanup := setupLogging()
	err := newRootCmd().Execute()
	cleanup()

	if err != nil {
		fmt.Fprintf(os.Stderr, "hexdd: %v\n", err)
	}
	os.Exit(int(fault.ExitCode(err)))
}

func setupLogging() func() {
	path := os.Getenv(logEnv)
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}
	}

	f, err := tea.LogToFile(path, "hexdd")
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexdd: cannot log to %s: %v\n", path, err)
		log.SetOutput(io.Discard)
		return func() {}
	}
	return func() { f.Close() }
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "hexdd [flags] <file>",
		Short:         "Hex viewer and in-place byte editor",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.view, "view", "v", "", "offset base: h (hex), d (decimal) or o (octal)")
	flags.StringVarP(&opts.width, "width", "w", "", "bytes per row, or auto to fit the terminal")
	flags.StringVarP(&opts.offset, "offset", "o", "", "start at this offset (0x, 0o and 0d prefixes accepted)")
	flags.BoolVar(&opts.dump, "dump", false, "write the whole file as text instead of opening the viewer")
	flags.BoolVar(&opts.stdout, "stdout", false, "with --dump, write to standard output")
	flags.StringVar(&opts.out, "out", "", "with --dump, write to this file instead of <file>"+dump.Extension)

	cmd.AddCommand(newConfigCmd())
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigPath())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigPath())
		},
	})

	return cmd
}

func run(cmd *cobra.Command, opts *options, path string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	display, err := resolveDisplay(opts, cfg, terminalColumns())
	if err != nil {
		return err
	}

	if opts.dump {
		if opts.offset != "" {
			return fmt.Errorf("--offset has no effect with --dump: %w", fault.ErrInvalidConfig)
		}
		return runDump(cmd, opts, path, display)
	}
	if opts.stdout || opts.out != "" {
		return fmt.Errorf("--stdout and --out need --dump: %w", fault.ErrInvalidConfig)
	}
	return runInteractive(opts, path, cfg, display)
}

func runDump(cmd *cobra.Command, opts *options, path string, display render.DisplayConfig) error {
	if opts.stdout {
		src, err := source.NewMappedSource(path)
		if err != nil {
			return err
		}
		defer src.Close()

		return dumpStream(src, display, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	output := opts.out
	if output == "" {
		output = dump.OutputPath(path)
	}

	msg := cmd.OutOrStdout()
	fmt.Fprintln(msg, "Dumping file...")
	stats, err := dump.ToFile(path, output, display)
	if err != nil {
		if errors.Is(err, fault.ErrIOFault) {
			warnPartial(cmd.ErrOrStderr(), stats, output)
		}
		return err
	}
	fmt.Fprintln(msg, "Dumping done!")
	return nil
}

// dumpStream writes the dump of src to out, warning on warn when a fault
// cuts it short
func dumpStream(src source.ByteSource, display render.DisplayConfig, out, warn io.Writer) error {
	stats, err := dump.Dump(src, display, out)
	if errors.Is(err, fault.ErrIOFault) {
		warnPartial(warn, stats, "standard output")
	}
	return err
}

func warnPartial(w io.Writer, stats dump.Stats, target string) {
	fmt.Fprintf(w, "warning: dump incomplete, %d rows written to %s\n", stats.Rows, target)
}

func runInteractive(opts *options, path string, cfg *config.Config, display render.DisplayConfig) error {
	start, hasStart, err := resolveOffset(opts.offset, display.Base)
	if err != nil {
		return err
	}

	model, err := ui.NewModelWithOptions(ui.ModelOptions{
		Filepath:       path,
		Config:         cfg,
		Display:        display,
		VisibleRows:    cfg.Display.VisibleRows,
		StartOffset:    start,
		HasStartOffset: hasStart,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	// Open errors take precedence so a missing file still exits with its own code
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("stdout is not a terminal; use --dump --stdout")
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return model.Err()
}
