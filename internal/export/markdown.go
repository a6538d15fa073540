package export

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gorewood/chatmd/internal/chatlog"
	"github.com/gorewood/chatmd/internal/media"
)

// timestampLayout formats message times as YYYY-MM-DD HH:MM:SS.
const timestampLayout = "2006-01-02 15:04:05"

// noTimestamp replaces a missing or zero message time.
const noTimestamp = "N/A"

// Renderer formats linearized messages as a Markdown document.
type Renderer struct {
	// Location is the zone timestamps are rendered in. Nil means time.Local.
	Location *time.Location
}

// Render builds the document for one conversation. Every text part is
// resolved against docDir, trimmed and emitted as its own block; parts
// without text are skipped. A nil resolver leaves text untouched.
func (r Renderer) Render(ctx context.Context, title string, msgs []chatlog.Message, resolver media.Resolver, docDir string) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "# %s\n\n", title)

	for _, msg := range msgs {
		header := fmt.Sprintf("**%s (%s):**", capitalize(msg.Role()), r.formatTime(msg.CreateTime))
		for _, part := range msg.Content.Parts {
			if !part.HasText() {
				continue
			}
			text := part.Text
			if resolver != nil {
				text = resolver.Resolve(ctx, text, docDir)
			}
			fmt.Fprintf(&builder, "%s\n\n%s\n\n---\n\n", header, strings.TrimSpace(text))
		}
	}

	return builder.String()
}

func (r Renderer) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// formatTime renders a usable timestamp, or N/A.
func (r Renderer) formatTime(ts chatlog.Timestamp) string {
	if !ts.Usable() {
		return noTimestamp
	}
	return ts.Time(r.location()).Format(timestampLayout)
}

// capitalize upper-cases the first rune only; the rest keeps its casing.
func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}
