package transcript

// Speaker is the author of a monologue on a single page. The same user shows up
// as a fresh Speaker every time they start a new monologue, merging them across
// a transcript is left to whoever consumes the output.
type Speaker struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// Message is one chat line.
type Message struct {
	ID int64 `json:"id"`
	// Content is the inner markup of the message's content node, it is left
	// as-is for a renderer to interpret. Always empty for deleted messages.
	Content   string `json:"content"`
	HasOnebox bool   `json:"has_onebox"`
	IsEdited  bool   `json:"is_edited"`
	IsDeleted bool   `json:"is_deleted"`
	Stars     int    `json:"stars"`
}

// MessageBlock is a speaker plus the consecutive messages they posted, it
// mirrors the visual grouping of the page and is never empty.
type MessageBlock struct {
	Speaker  Speaker   `json:"speaker"`
	Messages []Message `json:"messages"`
}

// Segment holds everything extracted from a single transcript page.
type Segment struct {
	URL    string         `json:"url"`
	Title  string         `json:"title,omitempty"`
	Blocks []MessageBlock `json:"blocks"`
}

func (s Segment) MessageCount() int {
	count := 0
	for _, b := range s.Blocks {
		count += len(b.Messages)
	}
	return count
}

// LastMessageID returns the id of the last message on the page, ok is false
// if the page has no messages.
func (s Segment) LastMessageID() (id int64, ok bool) {
	for i := len(s.Blocks) - 1; i >= 0; i-- {
		msgs := s.Blocks[i].Messages
		if len(msgs) > 0 {
			return msgs[len(msgs)-1].ID, true
		}
	}
	return 0, false
}

func (s Segment) firstMessageID() (id int64, ok bool) {
	for _, b := range s.Blocks {
		if len(b.Messages) > 0 {
			return b.Messages[0].ID, true
		}
	}
	return 0, false
}
