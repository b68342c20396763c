package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/permahub/seedaudit/internal/config"
	"github.com/permahub/seedaudit/internal/logger"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "seedaudit",
	Short: "Find duplicate and overlapping wiki content in SQL seed files",
	Long: `seedaudit reads the wiki seed files (guides, events, locations), compares
every pair of records of the same kind and reports exact slug collisions and
content overlaps before the seeds are applied to the database.

Running seedaudit without a subcommand runs analyze.`,
	Args:              cobra.ArbitraryArgs,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runAnalyze,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show INFO overlaps and diagnostics")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "configuration file")
	addAnalyzeFlags(rootCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	logger.SetVerbose(verbose)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command line and returns the process exit code. Errors
// and panics are reported once here.
func run(args []string, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			printFatal(stderr, fmt.Errorf("panic: %v", r), verbose)
			if verbose {
				_, _ = stderr.Write(debug.Stack())
			}
			code = 1
		}
	}()

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		printFatal(stderr, err, verbose)
		return 1
	}
	return 0
}

// printFatal prints err in red. When verbose, every wrapped cause is
// printed on its own line.
func printFatal(w io.Writer, err error, verbose bool) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s %v\n", red("Fatal error:"), err)
	if !verbose {
		return
	}
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(w, "  caused by: %v\n", cause)
	}
}
