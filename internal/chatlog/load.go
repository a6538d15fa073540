package chatlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
)

// ErrUnsupportedRoot is returned when the export root is neither an object nor an array.
var ErrUnsupportedRoot = errors.New("export root must be a JSON object or array")

// Document is a parsed export. It is never mutated after loading.
type Document struct {
	Conversations []Conversation
}

// LoadError reports an export that could not be read or parsed.
// It is fatal for a run: nothing is written when loading fails.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Path == "" {
		return "load export: " + e.Err.Error()
	}
	return fmt.Sprintf("load export %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the export file does not exist.
func (e *LoadError) NotFound() bool {
	return errors.Is(e.Err, os.ErrNotExist)
}

// Load reads and parses the export at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	doc, err := Parse(data)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Parse decodes an export document from raw JSON.
//
// Accepted roots:
//   - an array of conversations
//   - an object with a "conversations" field (array, or object keyed by id)
//   - a single conversation object carrying "mapping"
//
// Any other object yields an empty document. A malformed conversation
// inside a well-formed collection does not fail the parse; see Conversation.Err.
func Parse(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &LoadError{Err: errors.New("empty document")}
	}

	switch trimmed[0] {
	case '[':
		convs, err := decodeCollection(trimmed)
		if err != nil {
			return nil, &LoadError{Err: err}
		}
		return &Document{Conversations: convs}, nil
	case '{':
		return parseObjectRoot(trimmed)
	default:
		if !json.Valid(trimmed) {
			return nil, &LoadError{Err: errors.New("invalid JSON")}
		}
		return nil, &LoadError{Err: ErrUnsupportedRoot}
	}
}

func parseObjectRoot(data []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("parse JSON: %w", err)}
	}

	if raw, ok := fields["conversations"]; ok {
		convs, err := decodeCollection(raw)
		if err != nil {
			return nil, &LoadError{Err: err}
		}
		return &Document{Conversations: convs}, nil
	}

	if _, ok := fields["mapping"]; ok {
		return &Document{Conversations: []Conversation{decodeConversation(data)}}, nil
	}

	return &Document{}, nil
}

// decodeCollection decodes an array of conversations, or an object of
// conversations keyed by id (ordered by key). Only the collection itself must
// be well formed; each conversation is decoded on its own by decodeConversation.
func decodeCollection(raw json.RawMessage) ([]Conversation, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var byID map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &byID); err != nil {
			return nil, fmt.Errorf("parse conversations: %w", err)
		}
		convs := make([]Conversation, 0, len(byID))
		for _, id := range slices.Sorted(maps.Keys(byID)) {
			conv := decodeConversation(byID[id])
			if conv.ID == "" {
				conv.ID = id
			}
			convs = append(convs, conv)
		}
		return convs, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("parse conversations: %w", err)
	}
	convs := make([]Conversation, 0, len(items))
	for _, item := range items {
		convs = append(convs, decodeConversation(item))
	}
	return convs, nil
}

// decodeConversation decodes one conversation. A conversation whose fields
// have the wrong JSON types keeps its position in the document with Err set
// and no messages, so the rest of the export still converts.
func decodeConversation(raw json.RawMessage) Conversation {
	var conv Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return Conversation{Err: fmt.Errorf("parse conversation: %w", err)}
	}
	return conv
}
