package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gubarz/mdifdef/internal/book"
	"github.com/gubarz/mdifdef/internal/config"
	"github.com/gubarz/mdifdef/internal/directive"
	"github.com/gubarz/mdifdef/internal/manual"
	"github.com/gubarz/mdifdef/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.2.0"

// errFilesFailed makes manual mode exit non-zero after printing its reports.
var errFilesFailed = errors.New("some files have malformed directives")

var supportsCmd = &cobra.Command{
	Use:   "supports <renderer>",
	Short: "Check whether a renderer is supported",
	Long: `Called by mdBook before preprocessing. Every renderer is supported,
so this always exits with status 0.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
}

var manualCmd = &cobra.Command{
	Use:   "manual <file>...",
	Short: "Evaluate files directly and print the outcome",
	Long: `Reads each file, resolves its directives against the active flags
and prints whether it is kept (with the resolved text), dropped, or malformed.

Useful for testing directives without running mdBook.`,
	Args:         cobra.MinimumNArgs(1),
	RunE:         runManual,
	SilenceUsage: true,
}

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Interactively try flag sets on a file",
	Long: `Opens a terminal UI showing the file resolved against the flags typed
in the input line. On exit the final flag list is printed to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

var rootCmd = &cobra.Command{
	Use:   "mdifdef",
	Short: "Conditional chapters for mdBook",
	Long: `mdBook preprocessor resolving @if_flag / @elif_flag / @else / @end blocks
and @file_flag guards against a set of active flags.

Without a subcommand it reads the [context, book] JSON from stdin and writes
the processed book to stdout, as mdBook expects.`,
	Args:          cobra.NoArgs,
	RunE:          runPreprocess,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(supportsCmd, manualCmd, previewCmd)

	rootCmd.PersistentFlags().StringP("flags-file", "f", "", "File listing active flags (whitespace or comma separated)")
	rootCmd.PersistentFlags().StringSliceP("extra-flags", "e", nil, "Additional active flags (comma separated, repeatable)")
	rootCmd.PersistentFlags().String("sentinel", "", "Directive marker character (default @)")
	rootCmd.PersistentFlags().Bool("no-misuse-check", false, "Do not drop documents with stray directive-like text")
	rootCmd.PersistentFlags().String("log-level", "", "Log level for stderr: debug, info, warn, error")
	manualCmd.Flags().StringP("output", "o", "", "Output format: text, json, yaml")

	viper.BindPFlag("flags_file", rootCmd.PersistentFlags().Lookup("flags-file"))
	viper.BindPFlag("flags", rootCmd.PersistentFlags().Lookup("extra-flags"))
	viper.BindPFlag("sentinel", rootCmd.PersistentFlags().Lookup("sentinel"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("format", manualCmd.Flags().Lookup("output"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.GetLogLevel()})))
}

// newProcessor applies the --no-misuse-check override on top of the config
func newProcessor(cmd *cobra.Command) (*directive.Processor, error) {
	p, err := config.NewProcessor()
	if err != nil {
		return nil, err
	}
	if off, _ := cmd.Flags().GetBool("no-misuse-check"); off {
		p = p.WithMisuseCheck(false)
	}
	return p, nil
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	proc, err := newProcessor(cmd)
	if err != nil {
		return err
	}
	flags, err := config.ActiveFlags()
	if err != nil {
		return err
	}

	ctx, b, err := book.ReadInput(cmd.InOrStdin())
	if err != nil {
		return err
	}

	// Flags from book.toml join the command line ones.
	settings, err := ctx.Settings(book.Name)
	if err != nil {
		return err
	}
	flagsFile := settings.FlagsFile
	if flagsFile != "" && !filepath.IsAbs(flagsFile) {
		flagsFile = filepath.Join(ctx.Root, flagsFile)
	}
	bookFlags, err := config.LoadFlags(flagsFile, settings.Flags)
	if err != nil {
		return err
	}
	flags = flags.Union(bookFlags)

	slog.Debug("preprocessing book", "renderer", ctx.Renderer, "mdbook_version", ctx.MdbookVersion, "flags", flags.String())

	walker := book.NewWalker(proc, flags).WithLogger(slog.Default())
	if err := walker.Run(b); err != nil {
		return fmt.Errorf("preprocessing failed: %w", err)
	}
	return book.WriteBook(cmd.OutOrStdout(), b)
}

func runManual(cmd *cobra.Command, args []string) error {
	format, err := manual.ParseFormat(config.GetFormat())
	if err != nil {
		return err
	}
	proc, err := newProcessor(cmd)
	if err != nil {
		return err
	}
	flags, err := config.ActiveFlags()
	if err != nil {
		return err
	}

	reports, err := manual.NewRunner(proc, flags).Run(cmd.Context(), args)
	if err != nil {
		return err
	}
	if err := manual.Write(cmd.OutOrStdout(), reports, flags, format); err != nil {
		return err
	}
	if manual.AnyFailed(reports) {
		return errFilesFailed
	}
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	proc, err := newProcessor(cmd)
	if err != nil {
		return err
	}
	flags, err := config.ActiveFlags()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	return ui.RunPreview(args[0], string(data), proc, flags)
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFilesFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
