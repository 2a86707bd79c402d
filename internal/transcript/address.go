package transcript

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HourRange is the hour suffix of a transcript page, ex. "13-24".
type HourRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (h HourRange) String() string {
	return fmt.Sprintf("%d-%d", h.From, h.To)
}

// PageAddress identifies a single transcript page.
//
// urls for transcript pages have the form /transcript/<room>/<Y>/<M>/<D>[/<H>-<H>],
// the numbers are never zero-padded and the first segment of a day is reachable
// both with and without the hour suffix.
type PageAddress struct {
	Room  int64      `json:"room"`
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Day   int        `json:"day"`
	Hours *HourRange `json:"hours,omitempty"`
}

func (a PageAddress) Path() string {
	path := fmt.Sprintf("/transcript/%d/%d/%d/%d", a.Room, a.Year, a.Month, a.Day)
	if a.Hours != nil {
		path += "/" + a.Hours.String()
	}
	return path
}

func (a PageAddress) String() string {
	return a.Path()
}

func (a PageAddress) date() time.Time {
	return time.Date(a.Year, time.Month(a.Month), a.Day, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether both addresses point into the same calendar day of
// the same room.
func (a PageAddress) SameDay(other PageAddress) bool {
	return a.Room == other.Room &&
		a.Year == other.Year &&
		a.Month == other.Month &&
		a.Day == other.Day
}

func parseHourRange(s string) (HourRange, error) {
	from, to, found := strings.Cut(s, "-")
	if !found {
		return HourRange{}, fmt.Errorf("hour range %q: expected <H>-<H>", s)
	}
	fromHour, err := strconv.Atoi(from)
	if err != nil {
		return HourRange{}, fmt.Errorf("hour range %q: %w", s, err)
	}
	toHour, err := strconv.Atoi(to)
	if err != nil {
		return HourRange{}, fmt.Errorf("hour range %q: %w", s, err)
	}
	if fromHour < 0 || toHour > 24 || fromHour >= toHour {
		return HourRange{}, fmt.Errorf("hour range %q: out of bounds", s)
	}
	return HourRange{From: fromHour, To: toHour}, nil
}

func parseDate(room int64, year, month, day string) (PageAddress, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return PageAddress{}, fmt.Errorf("year: %w", err)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return PageAddress{}, fmt.Errorf("month: %w", err)
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return PageAddress{}, fmt.Errorf("day: %w", err)
	}
	normalized := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if normalized.Year() != y || int(normalized.Month()) != m || normalized.Day() != d {
		return PageAddress{}, fmt.Errorf("%s/%s/%s is not a valid date", year, month, day)
	}
	return PageAddress{Room: room, Year: y, Month: m, Day: d}, nil
}

func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

// ParsePath parses a full transcript path, absolute urls are accepted but only
// their path is considered.
func ParsePath(raw string) (PageAddress, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return PageAddress{}, fmt.Errorf("parse transcript path %q: %w", raw, err)
	}
	parts := splitPath(u.Path)
	if len(parts) < 5 || len(parts) > 6 || parts[0] != "transcript" {
		return PageAddress{}, fmt.Errorf("parse transcript path %q: expected /transcript/<room>/<Y>/<M>/<D>[/<H>-<H>]", raw)
	}
	room, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return PageAddress{}, fmt.Errorf("parse transcript path %q: room: %w", raw, err)
	}
	addr, err := parseDate(room, parts[2], parts[3], parts[4])
	if err != nil {
		return PageAddress{}, fmt.Errorf("parse transcript path %q: %w", raw, err)
	}
	if len(parts) == 6 {
		hours, err := parseHourRange(parts[5])
		if err != nil {
			return PageAddress{}, fmt.Errorf("parse transcript path %q: %w", raw, err)
		}
		addr.Hours = &hours
	}
	return addr, nil
}

// ParseAddress parses a page address the way it is given on the command line,
// the following forms are accepted:
//
//	/transcript/<room>/<Y>/<M>/<D>[/<H>-<H>]
//	/transcript/<Y>/<M>/<D>[/<H>-<H>]
//	<Y>/<M>/<D>[/<H>-<H>]
//	YYYY-MM-DD[/<H>-<H>]
//
// forms without a room use the given room, a full path must agree with it.
func ParseAddress(room int64, raw string) (PageAddress, error) {
	parts := splitPath(raw)
	if len(parts) == 0 {
		return PageAddress{}, fmt.Errorf("parse address: empty")
	}

	if parts[0] == "transcript" {
		rest := parts[1:]
		if len(rest) == 0 {
			return PageAddress{}, fmt.Errorf("parse address %q: missing date", raw)
		}
		hasHours := strings.Contains(rest[len(rest)-1], "-")
		isFull := len(rest) == 5 || (len(rest) == 4 && !hasHours)
		if isFull {
			addr, err := ParsePath(raw)
			if err != nil {
				return PageAddress{}, err
			}
			if room != 0 && addr.Room != room {
				return PageAddress{}, fmt.Errorf("parse address %q: room %d does not match room %d", raw, addr.Room, room)
			}
			return addr, nil
		}
		parts = rest
	}

	var hours *HourRange
	last := parts[len(parts)-1]
	if len(parts) > 1 && strings.Contains(last, "-") {
		h, err := parseHourRange(last)
		if err != nil {
			return PageAddress{}, fmt.Errorf("parse address %q: %w", raw, err)
		}
		hours = &h
		parts = parts[:len(parts)-1]
	}

	var addr PageAddress
	switch len(parts) {
	case 1:
		date, err := time.Parse(time.DateOnly, parts[0])
		if err != nil {
			return PageAddress{}, fmt.Errorf("parse address %q: %w", raw, err)
		}
		addr = PageAddress{
			Room:  room,
			Year:  date.Year(),
			Month: int(date.Month()),
			Day:   date.Day(),
		}
	case 3:
		var err error
		addr, err = parseDate(room, parts[0], parts[1], parts[2])
		if err != nil {
			return PageAddress{}, fmt.Errorf("parse address %q: %w", raw, err)
		}
	default:
		return PageAddress{}, fmt.Errorf("parse address %q: unrecognized format", raw)
	}
	addr.Hours = hours
	return addr, nil
}

// ValidateRange checks that an end boundary makes sense for a given start.
//
// a boundary is matched as a path prefix, so an hourless boundary on the start's
// own day would stop the run right after the first segment. that case is
// rejected instead of silently scraping a single page.
func ValidateRange(start PageAddress, end *PageAddress) error {
	if end == nil {
		return nil
	}
	if start.Room != end.Room {
		return fmt.Errorf("%w: start room %d, end room %d", ErrBoundaryMismatch, start.Room, end.Room)
	}
	if end.date().Before(start.date()) {
		return fmt.Errorf("%w: end %s is before start %s", ErrBoundaryMismatch, end.Path(), start.Path())
	}
	if !start.SameDay(*end) {
		return nil
	}
	if end.Hours == nil {
		return fmt.Errorf(
			"%w: end %s is on the same day as start %s but has no hour range",
			ErrBoundaryMismatch, end.Path(), start.Path(),
		)
	}
	startHour := 0
	if start.Hours != nil {
		startHour = start.Hours.From
	}
	if end.Hours.From <= startHour {
		return fmt.Errorf("%w: end %s does not come after start %s", ErrBoundaryMismatch, end.Path(), start.Path())
	}
	return nil
}

// boundaryReached reports whether the path of next lies at or under the
// boundary. matching is done on whole path segments so that a boundary of
// /transcript/1/2016/3/1 does not match /transcript/1/2016/3/14.
func boundaryReached(next, boundary string) bool {
	if boundary == "" {
		return false
	}
	path := next
	if u, err := url.Parse(next); err == nil {
		path = u.Path
	}
	boundary = strings.TrimSuffix(boundary, "/")
	return path == boundary || strings.HasPrefix(path, boundary+"/")
}

// after reports whether a lies strictly later than b within the same room.
// an address without hours covers its whole day, so it is only after b when
// it is on a later day.
func (a PageAddress) after(b PageAddress) bool {
	if a.Room != b.Room {
		return false
	}
	ad, bd := a.date(), b.date()
	if !ad.Equal(bd) {
		return ad.After(bd)
	}
	if a.Hours == nil || b.Hours == nil {
		return false
	}
	return a.Hours.From > b.Hours.From
}

// passedBoundary reports whether next already lies beyond end without having
// matched it, which happens when the link chain skips the end page.
func passedBoundary(next string, end *PageAddress) bool {
	if end == nil {
		return false
	}
	addr, err := ParsePath(next)
	if err != nil {
		return false
	}
	return addr.after(*end)
}
