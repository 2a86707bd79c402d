package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Extract turns a transcript page into its message blocks, in page order.
//
// the layout it expects:
//   - ".monologue" is one block, it contains ".signature" and ".messages"
//   - ".signature" contains a single link, the user's name is in its title and
//     their id is in its href
//   - ".messages" contains one or more ".message" with an id of "message-<id>"
//   - the message body is in ".content", deleted messages have ".deleted" in it
//     and oneboxed messages have a ".onebox" child
//   - edited messages contain ".edits"
//   - stars are in ".flash .times", it is empty when there are none
func Extract(doc Document) ([]MessageBlock, error) {
	monologues := doc.FindClass("monologue")
	blocks := make([]MessageBlock, 0, len(monologues))
	for _, monologue := range monologues {
		block, err := extractBlock(monologue)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func extractBlock(monologue Node) (MessageBlock, error) {
	signature, ok := first(monologue.FindClass("signature"))
	if !ok {
		return MessageBlock{}, &MalformedSpeakerError{Reason: "monologue has no signature"}
	}
	speaker, err := extractSpeaker(signature)
	if err != nil {
		return MessageBlock{}, err
	}

	block := MessageBlock{Speaker: speaker}
	for _, container := range monologue.ChildrenClass("messages") {
		for _, node := range container.ChildrenClass("message") {
			msg, err := extractMessage(node)
			if err != nil {
				return MessageBlock{}, err
			}
			block.Messages = append(block.Messages, msg)
		}
	}
	if len(block.Messages) == 0 {
		return MessageBlock{}, &EmptyMonologueError{Speaker: speaker}
	}
	return block, nil
}

var userIdRegex = regexp.MustCompile(`/users/(-?\d+)`)
var trailingDigitsRegex = regexp.MustCompile(`(-?\d+)/?$`)

func extractSpeaker(signature Node) (Speaker, error) {
	links := signature.FindTag("a")
	if len(links) != 1 {
		return Speaker{}, &MalformedSpeakerError{
			Links:  len(links),
			Reason: "expected exactly one link in signature",
		}
	}
	link := links[0]

	href, _ := link.Attr("href")
	groups := userIdRegex.FindStringSubmatch(href)
	if len(groups) < 2 {
		groups = trailingDigitsRegex.FindStringSubmatch(href)
	}
	if len(groups) < 2 {
		return Speaker{}, &MalformedSpeakerError{Href: href, Reason: "no user id in link"}
	}
	id, err := strconv.ParseInt(groups[1], 10, 64)
	if err != nil {
		return Speaker{}, &MalformedSpeakerError{Href: href, Reason: err.Error()}
	}

	name, _ := link.Attr("title")
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(link.Text())
	}
	return Speaker{Name: name, ID: id}, nil
}

const messageIdPrefix = "message-"

func parseMessageId(elementId string) (int64, error) {
	digits, found := strings.CutPrefix(elementId, messageIdPrefix)
	if !found {
		return 0, &MalformedMessageIdError{ElementID: elementId}
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id < 0 {
		return 0, &MalformedMessageIdError{ElementID: elementId, Err: err}
	}
	return id, nil
}

func extractMessage(node Node) (Message, error) {
	id, err := parseMessageId(node.ID())
	if err != nil {
		return Message{}, err
	}
	msg := Message{ID: id}

	if content, ok := first(node.ChildrenClass("content")); ok {
		if len(content.FindClass("deleted")) > 0 {
			msg.IsDeleted = true
		} else {
			markup, err := content.InnerHTML()
			if err != nil {
				return Message{}, fmt.Errorf("message %d: serialize content: %w", id, err)
			}
			msg.Content = strings.TrimSpace(markup)
			msg.HasOnebox = len(content.ChildrenClass("onebox")) > 0
		}
	}

	msg.IsEdited = len(node.FindClass("edits")) > 0

	msg.Stars, err = extractStars(id, node)
	if err != nil {
		return Message{}, err
	}
	return msg, nil
}

func extractStars(id int64, message Node) (int, error) {
	flash, ok := first(message.FindClass("flash"))
	if !ok {
		return 0, nil
	}
	times, ok := first(flash.FindClass("times"))
	if !ok {
		return 0, nil
	}
	text := strings.TrimSpace(times.Text())
	if text == "" {
		return 0, nil
	}
	stars, err := strconv.Atoi(text)
	if err != nil || stars < 0 {
		return 0, &MalformedStarCountError{MessageID: id, Text: text, Err: err}
	}
	return stars, nil
}
