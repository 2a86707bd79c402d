package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"transcript-scraper/internal/htmldoc"
	"transcript-scraper/internal/transcript"
	"transcript-scraper/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	parseCmd.Flags().String("url", "", "The url the page was saved from, recorded on the segment.")
	parseCmd.Flags().String("end", "", "Boundary used when reporting the next page.")
	rootCmd.AddCommand(parseCmd)
}

type parseOutput struct {
	transcript.Segment
	Next string `json:"next,omitempty"`
	Stop string `json:"stop"`
}

// parsePage extracts a saved transcript page and works out where a scrape
// would go next.
func parsePage(markup, url, end string) (parseOutput, error) {
	doc, err := htmldoc.Parser{}.Parse(markup)
	if err != nil {
		return parseOutput{}, err
	}
	blocks, err := transcript.Extract(doc)
	if err != nil {
		return parseOutput{}, err
	}
	decision, err := transcript.Next(doc, end)
	if err != nil {
		return parseOutput{}, err
	}
	return parseOutput{
		Segment: transcript.Segment{
			URL:    url,
			Title:  doc.Title(),
			Blocks: blocks,
		},
		Next: decision.URL,
		Stop: decision.Stop.String(),
	}, nil
}

var parseCmd = &cobra.Command{
	Use:   "parse <page.html> [--url <url>]",
	Short: "Extracts the messages of a saved transcript page and prints them as JSON.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		markup, err := os.ReadFile(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read page", err)
		}
		url, _ := cmd.Flags().GetString("url")
		end, _ := cmd.Flags().GetString("end")

		out, err := parsePage(string(markup), url, end)
		if err != nil {
			serviceutil.Fatal("failed to parse page", err)
		}
		serialized, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			serviceutil.Fatal("failed to serialize", err)
		}
		fmt.Println(string(serialized))
	},
}
