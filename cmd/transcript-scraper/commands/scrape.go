package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"transcript-scraper/internal/fetcher"
	"transcript-scraper/internal/htmldoc"
	"transcript-scraper/internal/sink"
	"transcript-scraper/internal/telemetry"
	"transcript-scraper/internal/transcript"
	"transcript-scraper/lib/serviceutil"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func init() {
	registerScrapeFlags(scrapeCmd.Flags())
	_ = scrapeCmd.MarkFlagRequired("start")

	rootCmd.AddCommand(scrapeCmd)
}

func registerScrapeFlags(flags *pflag.FlagSet) {
	flags.StringP("start", "s", "", "First page to scrape: YYYY-MM-DD, Y/M/D[/H-H] or a /transcript/... path.")
	flags.StringP("end", "e", "", "Stop before reaching this page, same formats as --start.")
	flags.StringP("output", "o", defaultOutput, "Output file (.json, .db) or database url (libsql://, postgres://).")
	flags.BoolP("append", "a", false, "Keep what the output already contains instead of replacing it.")
	flags.BoolP("pretty", "p", false, "Indent JSON output.")
	flags.StringP("delay", "d", "5", "Time to wait between page requests, in seconds or as a duration (ex. 1m).")
	flags.String("base-url", fetcher.DefaultBaseUrl, "Chat server to scrape from.")
	flags.Int("retries", 3, "Retries for a page request on server errors.")
	flags.String("save-pages", "", "Directory to keep a copy of every fetched page in.")
	flags.String("config", "scraper.json5", "Config file, flags take precedence over it.")
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <room> --start <date> [--end <date>] [-o output.json]",
	Short: "Follows a room's transcript page by page and writes every message.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := loadConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		settings, err := resolveSettings(cfg, cmd.Flags(), args[0])
		if err != nil {
			serviceutil.Fatal("invalid arguments", err)
		}

		err = telemetry.SetupFromEnv(ctx, "transcript-scraper")
		if err != nil {
			slog.Warn("failed to setup telemetry, continuing without it", "err", err)
		}
		telemetry.InstrumentPerfStats(ctx)

		err = runScrape(ctx, settings, telemetry.SlogAPI{})

		// Fatal exits without running defers, the spans of a failed run are
		// flushed first
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr := telemetry.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			slog.Warn("failed to flush telemetry", "err", shutdownErr)
		}

		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
	},
}

// runScrape scrapes into the configured output. An interrupted scrape is not
// an error, the output then holds every page finished before it.
func runScrape(ctx context.Context, settings scrapeSettings, tel telemetry.API) error {
	client, err := fetcher.New(settings.fetcher, tel)
	if err != nil {
		return fmt.Errorf("create http client: %w", err)
	}
	out, err := sink.Open(ctx, settings.sink)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer out.Close()

	slog.Info(
		"scraping transcript",
		"start", settings.run.Start.Path(),
		"output", settings.sink.Output,
		"sink", sink.KindOf(settings.sink.Output).String(),
	)

	scraper := transcript.NewScraper(client, htmldoc.Parser{}, out, tel)
	t1 := time.Now()
	result, err := scraper.Run(ctx, settings.run)
	t2 := time.Now()

	slog.Info(
		"scraped",
		"pages", len(result.Segments),
		"messages", result.MessageCount(),
		"seconds", t2.Sub(t1).Seconds(),
	)
	if errors.Is(err, transcript.ErrInterrupted) {
		slog.Warn("scrape interrupted, output holds every page finished so far", "err", err)
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("finished", "reason", result.Stop.String())
	return nil
}
