package chatlog

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Linearize returns the messages of a conversation mapping ordered by
// create_time ascending. Nodes without a message are dropped. Messages
// without a timestamp come first; equal timestamps keep node-id order.
// An empty result means the conversation has no content.
func Linearize(mapping map[string]Node) []Message {
	msgs := make([]Message, 0, len(mapping))
	for _, id := range slices.Sorted(maps.Keys(mapping)) {
		if node := mapping[id]; node.Message != nil {
			msgs = append(msgs, *node.Message)
		}
	}

	slices.SortStableFunc(msgs, func(a, b Message) int {
		switch {
		case a.CreateTime.Before(b.CreateTime):
			return -1
		case b.CreateTime.Before(a.CreateTime):
			return 1
		default:
			return 0
		}
	})
	return msgs
}

// Messages returns the conversation's linearized messages.
func (c Conversation) Messages() []Message {
	return Linearize(c.Mapping)
}

// DisplayTitle returns the conversation title, or chat_<index> when it is blank.
func (c Conversation) DisplayTitle(index int) string {
	if strings.TrimSpace(c.Title) != "" {
		return c.Title
	}
	return placeholderName(index)
}

// FileName returns a filesystem-safe base name (without extension) for the
// conversation. Titles that sanitize to nothing fall back to chat_<index>.
func (c Conversation) FileName(index int) string {
	if name := SanitizeFilename(c.Title); name != "" {
		return name
	}
	return placeholderName(index)
}

func placeholderName(index int) string {
	return "chat_" + strconv.Itoa(index)
}
