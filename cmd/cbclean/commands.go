package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/crunchclean/internal/core"
	"github.com/JonMunkholm/crunchclean/internal/export"
	"github.com/JonMunkholm/crunchclean/internal/logging"
	"github.com/spf13/cobra"
)

// cleanOptions holds the flags of the clean command.
type cleanOptions struct {
	output    string
	format    string
	delimiter string
	encoding  string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cbclean",
		Short: "Clean Crunchbase funding-round exports",
		Long: `cbclean drops excluded funding types from a Crunchbase export, backfills
missing amounts with the batch exchange rate and writes the reshaped table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newCleanCmd(), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cbclean %s\n", version)
		},
	}
}

func newCleanCmd() *cobra.Command {
	opts := &cleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean INPUT",
		Short: "Clean one export file",
		Long: `Clean reads INPUT and writes the cleaned table.

Without --output the file is written next to INPUT as crunchbase_cleaned.csv
(or .xlsx). Use "-o -" to write to stdout. Statistics go to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file path, or - for stdout")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: csv, xlsx (default: from output extension, else csv)")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", ",", "Input delimiter: , ; tab | auto")
	cmd.Flags().StringVar(&opts.encoding, "encoding", core.EncodingUTF8, "Input encoding: utf-8, windows-1252")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	return cmd
}

// resolveFormat picks the output format from the flag, then the output
// extension.
func resolveFormat(flag, output string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if strings.EqualFold(filepath.Ext(output), ".xlsx") {
		return export.FormatXLSX, nil
	}
	return export.FormatCSV, nil
}

func runClean(cmd *cobra.Command, input string, opts *cleanOptions) error {
	logger := logging.New(cmd.ErrOrStderr(), opts.logLevel, "text")

	format, err := resolveFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = filepath.Join(filepath.Dir(input), format.FileName())
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	table, err := core.ReadTable(f, core.ReadOptions{
		Delimiter:   opts.delimiter,
		Encoding:    opts.encoding,
		PreviewRows: -1,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	logger.Debug("input parsed", "file", input, "rows", len(table.Rows), "columns", len(table.Header))

	cleaned := core.Clean(table)

	var buf bytes.Buffer
	if err := format.Write(&buf, cleaned.Rows); err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	if err := writeOutput(cmd.OutOrStdout(), output, buf.Bytes()); err != nil {
		return err
	}

	logger.Info("clean completed", "input", input, "output", output, "format", format)
	printStats(cmd.ErrOrStderr(), cleaned.Stats, output)
	return nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// reportError prints err, followed by the user message and support code when
// the error is a known one.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, core.FormatUserError(err))
	}
}

func printStats(w io.Writer, stats core.Stats, output string) {
	fmt.Fprintf(w, "initial rows:    %d\n", stats.InitialRows)
	fmt.Fprintf(w, "filtered rows:   %d\n", stats.FilteredRows)
	fmt.Fprintf(w, "final rows:      %d\n", stats.FinalRows)
	if stats.RateDefined() {
		fmt.Fprintf(w, "exchange rate:   %.6f (%d samples)\n", stats.ExchangeRate, stats.RateSamples)
	} else {
		fmt.Fprintln(w, "exchange rate:   undefined (no usable non-USD amounts)")
	}
	fmt.Fprintf(w, "backfilled:      %d\n", stats.BackfilledRows)
	if output != "-" {
		fmt.Fprintf(w, "written to:      %s\n", output)
	}
}
