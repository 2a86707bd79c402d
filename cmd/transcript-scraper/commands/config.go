package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	"transcript-scraper/internal/fetcher"
	"transcript-scraper/internal/sink"
	"transcript-scraper/internal/transcript"
	"transcript-scraper/lib/configutil"

	"github.com/spf13/pflag"
)

const (
	defaultDelay  = 5 * time.Second
	defaultOutput = "output.json"
)

// Config is read from scraper.json5 (and scraper.local.json5), flags given
// on the command line take precedence over it.
type Config struct {
	BaseUrl   string `json:"base_url"`
	Delay     string `json:"delay"`
	Timeout   string `json:"timeout"`
	Retries   *int   `json:"retries"`
	UserAgent string `json:"user_agent"`
	Output    string `json:"output"`
	Pretty    bool   `json:"pretty"`
	SavePages string `json:"save_pages"`
	// DisableCloudflareBypass falls back to a plain http transport.
	DisableCloudflareBypass bool `json:"disable_cloudflare_bypass"`
}

func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

type scrapeSettings struct {
	run     transcript.Options
	fetcher fetcher.Options
	sink    sink.Options
}

// parseDuration accepts a plain number of seconds ("5") as well as a go
// duration ("5s", "1m30s").
func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("%s: must not be negative", name)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", name)
	}
	return d, nil
}

// resolveSettings combines the positional room, the flags and the config
// file into everything a scrape needs.
func resolveSettings(cfg Config, flags *pflag.FlagSet, room string) (scrapeSettings, error) {
	roomId, err := strconv.ParseInt(room, 10, 64)
	if err != nil || roomId <= 0 {
		return scrapeSettings{}, fmt.Errorf("room %q: expected a positive room id", room)
	}

	// flag defaults only fill what the config leaves empty
	overrideString := func(name string, target *string) {
		if flags.Changed(name) || *target == "" {
			*target, _ = flags.GetString(name)
		}
	}
	overrideString("base-url", &cfg.BaseUrl)
	overrideString("delay", &cfg.Delay)
	overrideString("output", &cfg.Output)
	overrideString("save-pages", &cfg.SavePages)
	if flags.Changed("pretty") {
		cfg.Pretty, _ = flags.GetBool("pretty")
	}
	retries, _ := flags.GetInt("retries")
	if cfg.Retries != nil && !flags.Changed("retries") {
		retries = *cfg.Retries
	}

	var settings scrapeSettings

	startRaw, _ := flags.GetString("start")
	settings.run.Start, err = transcript.ParseAddress(roomId, startRaw)
	if err != nil {
		return scrapeSettings{}, fmt.Errorf("--start: %w", err)
	}
	endRaw, _ := flags.GetString("end")
	if endRaw != "" {
		end, err := transcript.ParseAddress(roomId, endRaw)
		if err != nil {
			return scrapeSettings{}, fmt.Errorf("--end: %w", err)
		}
		settings.run.End = &end
	}
	err = transcript.ValidateRange(settings.run.Start, settings.run.End)
	if err != nil {
		return scrapeSettings{}, err
	}

	settings.run.Delay, err = parseDuration("delay", cfg.Delay, defaultDelay)
	if err != nil {
		return scrapeSettings{}, err
	}
	timeout, err := parseDuration("timeout", cfg.Timeout, 0)
	if err != nil {
		return scrapeSettings{}, err
	}

	settings.fetcher = fetcher.Options{
		BaseUrl:          cfg.BaseUrl,
		Timeout:          timeout,
		Retries:          retries,
		UserAgent:        cfg.UserAgent,
		CloudflareBypass: !cfg.DisableCloudflareBypass,
	}
	if cfg.SavePages != "" {
		archive, err := fetcher.NewPageArchive(cfg.SavePages)
		if err != nil {
			return scrapeSettings{}, fmt.Errorf("save-pages: %w", err)
		}
		settings.fetcher.Archive = &archive
	}

	appendExisting, _ := flags.GetBool("append")
	settings.sink = sink.Options{
		Output: cfg.Output,
		Append: appendExisting,
		Pretty: cfg.Pretty,
	}
	if settings.sink.Output == "" {
		settings.sink.Output = defaultOutput
	}

	return settings, nil
}
