package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/chatmd/internal/export"
)

// --- List tool ---

// ListInput is the input for the list_conversations tool.
type ListInput struct {
	Input string `json:"input,omitempty" jsonschema:"path to conversations.json (defaults to the server setting)"`
}

// ListOutput is the output for the list_conversations tool.
type ListOutput struct {
	Input         string        `json:"input"         jsonschema:"export file that was read"`
	Count         int           `json:"count"         jsonschema:"number of conversations in the export"`
	Conversations []export.Item `json:"conversations" jsonschema:"conversations in document order"`
}

func handleList(settings Settings) mcp.ToolHandlerFor[ListInput, ListOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
		doc, path, err := loadDocument(settings, input.Input)
		if err != nil {
			return nil, ListOutput{}, err
		}

		items := export.List(doc, settings.Location)
		return nil, ListOutput{Input: path, Count: len(items), Conversations: items}, nil
	}
}

// --- Render tool ---

// RenderInput is the input for the render_conversation tool.
type RenderInput struct {
	Index  int    `json:"index"            jsonschema:"zero-based conversation index from list_conversations"`
	Input  string `json:"input,omitempty"  jsonschema:"path to conversations.json"`
	Mode   string `json:"mode,omitempty"   jsonschema:"image mode: link or embed (download is not allowed here)"`
	Images string `json:"images,omitempty" jsonschema:"image folder"`
}

// RenderOutput is the output for the render_conversation tool.
type RenderOutput struct {
	Title    string `json:"title"    jsonschema:"conversation title"`
	Path     string `json:"path"     jsonschema:"where convert would write this document"`
	Messages int    `json:"messages" jsonschema:"number of messages rendered"`
	Markdown string `json:"markdown" jsonschema:"rendered Markdown document"`
}

func handleRender(settings Settings) mcp.ToolHandlerFor[RenderInput, RenderOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RenderInput) (*mcp.CallToolResult, RenderOutput, error) {
		doc, _, err := loadDocument(settings, input.Input)
		if err != nil {
			return nil, RenderOutput{}, err
		}
		if input.Index < 0 || input.Index >= len(doc.Conversations) {
			return nil, RenderOutput{}, fmt.Errorf("index %d out of range (export has %d conversations)", input.Index, len(doc.Conversations))
		}

		resolver, err := newPreviewResolver(settings, input.Mode, input.Images)
		if err != nil {
			return nil, RenderOutput{}, err
		}

		conv := doc.Conversations[input.Index]
		if conv.Err != nil {
			return nil, RenderOutput{}, fmt.Errorf("conversation %d could not be decoded: %w", input.Index, conv.Err)
		}
		msgs := conv.Messages()
		exporter := export.Exporter{
			OutputRoot: settings.Output,
			Renderer:   export.Renderer{Location: settings.Location},
		}
		path := exporter.Destination(input.Index, conv, msgs)
		title := conv.DisplayTitle(input.Index)

		markdown := exporter.Renderer.Render(ctx, title, msgs, resolver, filepath.Dir(path))
		return nil, RenderOutput{Title: title, Path: path, Messages: len(msgs), Markdown: markdown}, nil
	}
}

// --- Convert tool ---

// ConvertInput is the input for the convert tool.
type ConvertInput struct {
	Input  string `json:"input,omitempty"  jsonschema:"path to conversations.json"`
	Output string `json:"output,omitempty" jsonschema:"output root directory"`
	Images string `json:"images,omitempty" jsonschema:"image folder"`
	Mode   string `json:"mode,omitempty"   jsonschema:"image mode: link, embed or download"`
}

// ConvertOutput is the output for the convert tool.
type ConvertOutput = export.Summary

func handleConvert(settings Settings) mcp.ToolHandlerFor[ConvertInput, ConvertOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ConvertInput) (*mcp.CallToolResult, ConvertOutput, error) {
		doc, _, err := loadDocument(settings, input.Input)
		if err != nil {
			return nil, ConvertOutput{}, err
		}

		resolver, err := newResolver(settings, input.Mode, input.Images)
		if err != nil {
			return nil, ConvertOutput{}, err
		}

		exporter := &export.Exporter{
			OutputRoot: pick(input.Output, settings.Output),
			Resolver:   resolver,
			Renderer:   export.Renderer{Location: settings.Location},
			Logger:     settings.Logger,
		}
		summary, err := exporter.Run(ctx, doc)
		if err != nil {
			return nil, ConvertOutput{}, err
		}
		return nil, summary, nil
	}
}
