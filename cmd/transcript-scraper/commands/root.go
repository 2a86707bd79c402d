package commands

import (
	"context"
	"fmt"
	"os"
	"transcript-scraper/internal/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "transcript-scraper",
	Short: "transcript-scraper downloads and structures chat room transcripts.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logs.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
