package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/beiklive/mytoolmodule/internal/jsonscan"
	"github.com/beiklive/mytoolmodule/internal/logging"
	"github.com/beiklive/mytoolmodule/internal/util"
)

var jsonscanCmd = &cobra.Command{
	Use:   "jsonscan [file]",
	Short: "Print the spans of the JSON values in a document",
	Long: `Walk a JSON document and print the offset, length and kind of each
top-level value. Reads standard input when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJSONScan,
}

var jsonscanWidth int

func init() {
	rootCmd.AddCommand(jsonscanCmd)

	jsonscanCmd.Flags().IntVarP(&jsonscanWidth, "width", "w", 60, "Truncate value text to this width (0 disables)")
}

func runJSONScan(cmd *cobra.Command, args []string) error {
	var (
		src []byte
		err error
	)
	if len(args) == 1 {
		src, err = afero.ReadFile(appFs, args[0])
	} else {
		src, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	spans, scanErr := jsonscan.Tokenize(src)
	out := cmd.OutOrStdout()
	for _, span := range spans {
		fmt.Fprintf(out, "%6d %6d  %-6s %s\n",
			span.Start, span.Len(), span.Kind, util.TruncateANSI(span.Text(src), jsonscanWidth))
	}
	if scanErr != nil {
		logging.Error("Scan stopped after {} values: {}", len(spans), scanErr)
		return scanErr
	}
	return nil
}
