package commands

import (
	"strings"
	"transcript-scraper/internal/roster"
	"transcript-scraper/internal/sink"
	"transcript-scraper/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	usersCmd.Flags().StringSlice("match", nil, "Only list users that went by a name containing one of these.")
	rootCmd.AddCommand(usersCmd)
}

func participantRows(participants []roster.Participant) []table.Row {
	rows := make([]table.Row, len(participants))
	for i, p := range participants {
		rows[i] = table.Row{
			p.ID,
			p.Name,
			p.Messages,
			p.Stars,
			p.Edited,
			p.Deleted,
			strings.Join(p.Names, ", "),
		}
	}
	return rows
}

var usersCmd = &cobra.Command{
	Use:   "users <output.json> [--match <name>]",
	Short: "Lists everyone who spoke in a scraped JSON transcript.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		segments, err := sink.ReadJSONFile(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read transcript", err)
		}
		patterns, _ := cmd.Flags().GetStringSlice("match")
		participants := roster.Match(roster.Build(segments), patterns)

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Name", "Messages", "Stars", "Edited", "Deleted", "Known as"})
		t.AppendRows(participantRows(participants))
		t.AppendFooter(table.Row{"", len(participants), "", "", "", "", ""})
		t.Render()
	},
}
