package transcript

import (
	"errors"
	"fmt"
)

var (
	// ErrInterrupted is returned by Scraper.Run when the context is cancelled
	// between pages, the partial result is still returned alongside it.
	ErrInterrupted = errors.New("traversal interrupted")
	// ErrBoundaryMismatch indicates a start/end combination that cannot be
	// matched unambiguously.
	ErrBoundaryMismatch = errors.New("end boundary does not fit start")
)

// FetchError is a transport level failure, it aborts the traversal.
type FetchError struct {
	URL string
	// Status is the http status code, 0 if no response was received.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MalformedSpeakerError is returned when a monologue's signature does not
// contain exactly one usable user link.
type MalformedSpeakerError struct {
	Links  int
	Href   string
	Reason string
}

func (e *MalformedSpeakerError) Error() string {
	if e.Href != "" {
		return fmt.Sprintf("malformed speaker (href %q): %s", e.Href, e.Reason)
	}
	return fmt.Sprintf("malformed speaker (%d links): %s", e.Links, e.Reason)
}

// EmptyMonologueError is returned when a monologue holds no messages, a
// rendered block always has at least one.
type EmptyMonologueError struct {
	Speaker Speaker
}

func (e *EmptyMonologueError) Error() string {
	return fmt.Sprintf("monologue of user %d (%s) has no messages", e.Speaker.ID, e.Speaker.Name)
}

// MalformedMessageIdError is returned when a message element's id is not of
// the form message-<digits>.
type MalformedMessageIdError struct {
	ElementID string
	Err       error
}

func (e *MalformedMessageIdError) Error() string {
	return fmt.Sprintf("malformed message id %q", e.ElementID)
}

func (e *MalformedMessageIdError) Unwrap() error {
	return e.Err
}

type MalformedStarCountError struct {
	MessageID int64
	Text      string
	Err       error
}

func (e *MalformedStarCountError) Error() string {
	return fmt.Sprintf("message %d: malformed star count %q", e.MessageID, e.Text)
}

func (e *MalformedStarCountError) Unwrap() error {
	return e.Err
}

// NavigationAmbiguityError is returned when a pager cannot be resolved to a
// single next link.
type NavigationAmbiguityError struct {
	Reason string
}

func (e *NavigationAmbiguityError) Error() string {
	return "ambiguous pager: " + e.Reason
}

// PageError attaches the page that caused a failure to the underlying error.
type PageError struct {
	URL string
	Err error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %s: %v", e.URL, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
