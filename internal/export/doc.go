// Package export renders conversations to Markdown and writes them into a
// date-partitioned output tree.
//
// # Rendering
//
// A Renderer turns an ordered message list into one Markdown document:
//
//	# Weekend plans
//
//	**User (2023-11-14 22:13:20):**
//
//	hello
//
//	---
//
// Each text part of each message becomes its own block. Parts are passed
// through a media.Resolver before trimming, so image placeholders and URLs
// are rewritten relative to the directory the document lands in.
//
// # Exporting
//
// An Exporter walks every conversation in a chatlog.Document and writes
// non-empty ones to:
//
//	<root>/<YYYY>/<MonthName>/<sanitized-title-or-chat_N>.md
//
// The bucket comes from the first message with a usable timestamp; when no
// message has one the conversation goes under unknown/unknown. Files are
// written atomically and overwrite earlier runs.
//
// # Listing
//
// List summarizes a document without writing anything. It backs the list
// command and the MCP list_conversations tool.
package export
