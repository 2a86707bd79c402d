package transcript

import (
	"context"
	"errors"
	"fmt"
	"time"
	"transcript-scraper/internal/assert"
	"transcript-scraper/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("transcript-scraper/internal/transcript")

const (
	report_scraper_fetch    = "scraper.fetch"
	report_scraper_parse    = "scraper.parse"
	report_scraper_extract  = "scraper.extract"
	report_scraper_navigate = "scraper.navigate"
	report_scraper_sink     = "scraper.sink"
	report_scraper_order    = "scraper.message-order"
	report_scraper_overrun  = "scraper.boundary-overrun"
	report_scraper_pages    = "scraper.pages"
	report_scraper_messages = "scraper.messages"
)

// Fetcher retrieves the raw markup of a page, url is either a path relative to
// the transcript host or an absolute url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Sink receives segments in traversal order as soon as they are extracted.
type Sink interface {
	Write(ctx context.Context, segment Segment) error
}

type Options struct {
	Start PageAddress
	// End is the exclusive end boundary, nil means run until the transcript
	// runs out of links.
	End *PageAddress
	// Delay is waited between two fetches, never before the first or after the
	// last one.
	Delay time.Duration
}

type Result struct {
	Segments []Segment
	// Stop is the reason the traversal ended, it is only meaningful when Run
	// returns no error.
	Stop StopReason
}

func (r Result) MessageCount() int {
	count := 0
	for _, s := range r.Segments {
		count += s.MessageCount()
	}
	return count
}

// Scraper drives the fetch, extract, navigate loop. Pages are handled strictly
// one after the other since every page decides what the next one is.
type Scraper struct {
	fetcher Fetcher
	parser  Parser
	sink    Sink
	tel     telemetry.API

	sleep func(ctx context.Context, d time.Duration) error
}

func NewScraper(fetcher Fetcher, parser Parser, sink Sink, tel telemetry.API) *Scraper {
	assert.NotNil(fetcher)
	assert.NotNil(parser)
	assert.NotNil(sink)
	assert.NotNil(tel)

	return &Scraper{
		fetcher: fetcher,
		parser:  parser,
		sink:    sink,
		tel:     telemetry.NewScopedAPI("transcript", tel),
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run traverses the transcript from opts.Start until a stop condition.
//
// Every segment extracted before a failure or an interrupt has already been
// handed to the sink and is part of the returned Result. Failures caused by a
// page are wrapped in a *PageError naming it.
func (s *Scraper) Run(ctx context.Context, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "Scraper:Run")
	defer span.End()

	var result Result

	err := ValidateRange(opts.Start, opts.End)
	if err != nil {
		span.SetStatus(codes.Error, "invalid range")
		return result, err
	}
	end := ""
	if opts.End != nil {
		end = opts.End.Path()
	}
	span.SetAttributes(
		attribute.String("start", opts.Start.Path()),
		attribute.String("end", end),
	)

	started := time.Now()
	defer func() {
		s.tel.ReportCount(report_scraper_pages, int64(len(result.Segments)))
		s.tel.ReportCount(report_scraper_messages, int64(result.MessageCount()))
		s.tel.ReportDebug(
			"traversal finished",
			"pages", len(result.Segments),
			"elapsed", time.Since(started).String(),
		)
	}()

	url := opts.Start.Path()
	lastId := int64(-1)
	overrun := false
	for {
		if ctx.Err() != nil {
			span.SetStatus(codes.Error, "interrupted")
			return result, fmt.Errorf("%w before %s: %w", ErrInterrupted, url, context.Cause(ctx))
		}

		segment, decision, err := s.page(ctx, url, end)
		if segment != nil {
			result.Segments = append(result.Segments, *segment)
			lastId = s.checkOrder(url, lastId, *segment)
		}
		if err != nil {
			span.RecordError(err)
			pageErr := &PageError{URL: url, Err: err}
			// a request cut short by the interrupt is not a broken page
			if ctx.Err() != nil {
				span.SetStatus(codes.Error, "interrupted")
				return result, fmt.Errorf("%w during %s: %w", ErrInterrupted, url, pageErr)
			}
			span.SetStatus(codes.Error, "page failed")
			return result, pageErr
		}

		if decision.Stop != Continue {
			result.Stop = decision.Stop
			s.tel.ReportDebug("traversal stopped", "reason", decision.Stop.String(), "last", url)
			return result, nil
		}

		if !overrun && passedBoundary(decision.URL, opts.End) {
			overrun = true
			s.tel.ReportWarning(
				report_scraper_overrun,
				fmt.Errorf("next page %s lies past end %s which was never linked", decision.URL, opts.End.Path()),
				url,
			)
		}
		url = decision.URL
		// an interrupt during the delay is picked up at the top of the loop
		_ = s.sleep(ctx, opts.Delay)
	}
}

// page handles a single page, the returned segment is non-nil once it has been
// written to the sink, even if navigating away from the page fails.
func (s *Scraper) page(ctx context.Context, url, end string) (*Segment, Decision, error) {
	ctx, span := tracer.Start(ctx, "Scraper:page")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	s.tel.ReportDebug("fetching page", "url", url)

	markup, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.tel.ReportBroken(report_scraper_fetch, err, url)
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			err = &FetchError{URL: url, Err: err}
		}
		return nil, Decision{}, err
	}

	doc, err := s.parser.Parse(markup)
	if err != nil {
		s.tel.ReportBroken(report_scraper_parse, err, url)
		return nil, Decision{}, fmt.Errorf("parse: %w", err)
	}

	blocks, err := Extract(doc)
	if err != nil {
		s.tel.ReportBroken(report_scraper_extract, err, url)
		return nil, Decision{}, fmt.Errorf("extract: %w", err)
	}
	segment := Segment{
		URL:    url,
		Title:  doc.Title(),
		Blocks: blocks,
	}
	span.SetAttributes(
		attribute.Int("blocks", len(blocks)),
		attribute.Int("messages", segment.MessageCount()),
	)

	// a page that was fetched before an interrupt is still written out
	err = s.sink.Write(context.WithoutCancel(ctx), segment)
	if err != nil {
		s.tel.ReportBroken(report_scraper_sink, err, url)
		return nil, Decision{}, fmt.Errorf("write segment: %w", err)
	}

	decision, err := Next(doc, end)
	if err != nil {
		s.tel.ReportBroken(report_scraper_navigate, err, url)
		return &segment, Decision{}, fmt.Errorf("navigate: %w", err)
	}
	return &segment, decision, nil
}

// checkOrder warns when message ids go backwards, which means pages were
// visited out of order. It returns the new last id.
func (s *Scraper) checkOrder(url string, lastId int64, segment Segment) int64 {
	firstId, ok := segment.firstMessageID()
	if !ok {
		return lastId
	}
	if firstId < lastId {
		s.tel.ReportWarning(
			report_scraper_order,
			fmt.Errorf("message %d follows message %d", firstId, lastId),
			url,
		)
	}
	id, _ := segment.LastMessageID()
	return id
}
