// Package roster summarizes who spoke in a scraped transcript.
package roster

import (
	"cmp"
	"slices"
	"transcript-scraper/internal/transcript"
	"transcript-scraper/lib/textutil"
)

// Participant is a speaker merged across every block they appear in.
type Participant struct {
	transcript.Speaker
	// Names lists every distinct display name seen for the id, in order of
	// appearance. Speaker.Name is the latest one.
	Names []string `json:"names"`

	Blocks   int `json:"blocks"`
	Messages int `json:"messages"`
	Edited   int `json:"edited"`
	Deleted  int `json:"deleted"`
	Stars    int `json:"stars"`

	FirstMessage int64 `json:"first_message"`
	LastMessage  int64 `json:"last_message"`
}

// Build merges speakers by id. Participants are sorted by message count,
// most active first, ties are broken by id.
func Build(segments []transcript.Segment) []Participant {
	byId := map[int64]*Participant{}
	var order []int64

	for _, segment := range segments {
		for _, block := range segment.Blocks {
			p, ok := byId[block.Speaker.ID]
			if !ok {
				p = &Participant{
					Speaker:      block.Speaker,
					FirstMessage: -1,
					LastMessage:  -1,
				}
				byId[block.Speaker.ID] = p
				order = append(order, block.Speaker.ID)
			}
			p.Name = block.Speaker.Name
			if !slices.Contains(p.Names, block.Speaker.Name) {
				p.Names = append(p.Names, block.Speaker.Name)
			}

			p.Blocks++
			for _, msg := range block.Messages {
				p.Messages++
				p.Stars += msg.Stars
				if msg.IsEdited {
					p.Edited++
				}
				if msg.IsDeleted {
					p.Deleted++
				}
				if p.FirstMessage < 0 || msg.ID < p.FirstMessage {
					p.FirstMessage = msg.ID
				}
				if msg.ID > p.LastMessage {
					p.LastMessage = msg.ID
				}
			}
		}
	}

	participants := make([]Participant, 0, len(order))
	for _, id := range order {
		participants = append(participants, *byId[id])
	}
	slices.SortFunc(participants, func(a, b Participant) int {
		if c := cmp.Compare(b.Messages, a.Messages); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return participants
}

// Match keeps the participants that ever went by a name containing one of
// the patterns, case and whitespace are ignored. No patterns keeps everyone.
func Match(participants []Participant, patterns []string) []Participant {
	if len(patterns) == 0 {
		return participants
	}
	var matched []Participant
	for _, p := range participants {
		if textutil.MatchName(p.Names, patterns) {
			matched = append(matched, p)
		}
	}
	return matched
}
