// Package mcp provides a Model Context Protocol server for chatmd.
// It exposes export inspection and conversion as MCP tools that any
// MCP-capable agent can use.
package mcp

import (
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/chatmd/internal/media"
)

// Settings are the defaults tools fall back to when a call omits a field.
type Settings struct {
	Input      string
	Output     string
	Images     string
	Mode       media.Mode
	Location   *time.Location
	HTTPClient media.HTTPDoer
	Logger     *slog.Logger
}

// NewServer creates an MCP server with all chatmd tools registered.
func NewServer(version string, settings Settings) *mcp.Server {
	if settings.Logger == nil {
		settings.Logger = slog.Default()
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "chatmd",
		Version: version,
	}, nil)
	registerTools(server, settings)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for tools that write the output tree.
// Conversion overwrites earlier output and may download images.
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(true),
		IdempotentHint:  true,
		OpenWorldHint:   boolPtr(true),
	}
}

// registerTools adds all chatmd tools to the server.
func registerTools(server *mcp.Server, settings Settings) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_conversations",
		Description: "List the conversations in a chat export: index, title, date bucket, message count, and output file name.",
		Annotations: readOnlyAnnotations(),
	}, handleList(settings))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_conversation",
		Description: "Render one conversation of a chat export as Markdown without writing any file. Image links are relative to where convert would place the document.",
		Annotations: readOnlyAnnotations(),
	}, handleRender(settings))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert",
		Description: "Convert a chat export into a year/month tree of Markdown files. Overwrites existing output for the same conversations.",
		Annotations: writeAnnotations(),
	}, handleConvert(settings))
}
