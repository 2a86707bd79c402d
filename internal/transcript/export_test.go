package transcript

import (
	"context"
	"time"
)

// SetSleep replaces the inter-page delay so tests don't wait on real timers.
func (s *Scraper) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	s.sleep = sleep
}

var BoundaryReached = boundaryReached

var PassedBoundary = passedBoundary
