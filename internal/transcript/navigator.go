package transcript

import (
	"fmt"
	"strings"
)

type StopReason int

const (
	Continue StopReason = iota
	// StopExhausted means the page links to nothing further.
	StopExhausted
	// StopBoundary means the next page lies at or past the end boundary.
	StopBoundary
)

func (r StopReason) String() string {
	switch r {
	case Continue:
		return "continue"
	case StopExhausted:
		return "exhausted"
	case StopBoundary:
		return "boundary"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Decision is the outcome of Next, URL is only set when Stop is Continue.
type Decision struct {
	Stop StopReason
	URL  string
}

// Next decides which page follows doc.
//
// a page has two ways of linking onward:
//   - ".pager" lists the other pages of the same day, the element right after
//     ".current" links to the next one.
//   - "a[rel=next]" links to the next day.
//
// the pager takes precedence, the rel=next link is only used once the pager is
// absent or on its last page. end is a path prefix, an empty end never stops
// the traversal.
func Next(doc Document, end string) (Decision, error) {
	next, err := resolveNext(doc)
	if err != nil {
		return Decision{}, err
	}
	if next == "" {
		return Decision{Stop: StopExhausted}, nil
	}
	if boundaryReached(next, end) {
		return Decision{Stop: StopBoundary}, nil
	}
	return Decision{Stop: Continue, URL: next}, nil
}

func resolveNext(doc Document) (string, error) {
	if pager, ok := first(doc.FindClass("pager")); ok {
		next, err := nextInPager(pager)
		if err != nil {
			return "", err
		}
		if next != "" {
			return next, nil
		}
	}

	for _, link := range doc.FindRel("a", "next") {
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if href != "" {
			return href, nil
		}
	}
	return "", nil
}

func nextInPager(pager Node) (string, error) {
	current := pager.FindClass("current")
	switch len(current) {
	case 0:
		return "", &NavigationAmbiguityError{Reason: "pager has no current page"}
	case 1:
	default:
		return "", &NavigationAmbiguityError{
			Reason: fmt.Sprintf("pager has %d current pages", len(current)),
		}
	}

	sibling, ok := current[0].NextSibling()
	if !ok {
		return "", nil
	}

	href, ok := sibling.Attr("href")
	if !ok {
		// the page number may be wrapped, ex. <span><a href="...">2</a></span>
		links := sibling.FindTag("a")
		if len(links) > 0 {
			href, ok = links[0].Attr("href")
		}
	}
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", &NavigationAmbiguityError{Reason: "page after current has no link"}
	}
	return href, nil
}
