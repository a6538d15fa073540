package mcp

import (
	"errors"
	"fmt"

	"github.com/gorewood/chatmd/internal/chatlog"
	"github.com/gorewood/chatmd/internal/media"
)

// pick returns value, or fallback when value is empty.
func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// loadDocument reads the export named by input, or the default input.
func loadDocument(settings Settings, input string) (*chatlog.Document, string, error) {
	path := pick(input, settings.Input)
	doc, err := chatlog.Load(path)
	if err != nil {
		return nil, path, err
	}
	return doc, path, nil
}

// newResolver builds the resolver for a call, applying defaults.
func newResolver(settings Settings, mode, images string) (media.Resolver, error) {
	m := settings.Mode
	if mode != "" {
		parsed, err := media.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		m = parsed
	}
	if m == "" {
		m = media.ModeLink
	}

	resolver, err := media.New(media.Config{
		Mode:       m,
		Folder:     pick(images, settings.Images),
		HTTPClient: settings.HTTPClient,
		Logger:     settings.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring images: %w", err)
	}
	return resolver, nil
}

// newPreviewResolver is newResolver for read-only tools: download mode is
// rejected when requested and replaced by link mode when it is the default.
func newPreviewResolver(settings Settings, mode, images string) (media.Resolver, error) {
	if mode != "" {
		parsed, err := media.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		if parsed == media.ModeDownload {
			return nil, errors.New("download mode writes files; use the convert tool")
		}
	} else if settings.Mode == media.ModeDownload {
		mode = string(media.ModeLink)
	}
	return newResolver(settings, mode, images)
}
