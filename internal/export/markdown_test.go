package export

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gorewood/chatmd/internal/chatlog"
)

func textMsg(role string, ts chatlog.Timestamp, parts ...chatlog.Part) chatlog.Message {
	return chatlog.Message{
		Author:     chatlog.Author{Role: role},
		CreateTime: ts,
		Content:    chatlog.Content{Parts: parts},
	}
}

func text(s string) chatlog.Part {
	return chatlog.Part{Kind: chatlog.PartText, Text: s}
}

// upperResolver stands in for a media.Resolver and records the docDir it saw.
type upperResolver struct{ docDir string }

func (u *upperResolver) Resolve(_ context.Context, s string, docDir string) string {
	u.docDir = docDir
	return strings.ToUpper(s)
}

func TestRenderer_Render(t *testing.T) {
	r := Renderer{Location: time.UTC}

	tests := []struct {
		name  string
		title string
		msgs  []chatlog.Message
		want  string
	}{
		{
			name:  "single user message",
			title: "Greeting",
			msgs:  []chatlog.Message{textMsg("user", chatlog.At(1700000000), text("hello"))},
			want:  "# Greeting\n\n**User (2023-11-14 22:13:20):**\n\nhello\n\n---\n\n",
		},
		{
			name:  "missing and zero timestamps render N/A",
			title: "T",
			msgs: []chatlog.Message{
				textMsg("assistant", chatlog.Timestamp{}, text("a")),
				textMsg("assistant", chatlog.At(0), text("b")),
			},
			want: "# T\n\n**Assistant (N/A):**\n\na\n\n---\n\n**Assistant (N/A):**\n\nb\n\n---\n\n",
		},
		{
			name:  "role defaults to system and keeps inner casing",
			title: "T",
			msgs: []chatlog.Message{
				textMsg("", chatlog.Timestamp{}, text("x")),
				textMsg("gPT", chatlog.Timestamp{}, text("y")),
			},
			want: "# T\n\n**System (N/A):**\n\nx\n\n---\n\n**GPT (N/A):**\n\ny\n\n---\n\n",
		},
		{
			name:  "each text part is its own block and unknown parts are skipped",
			title: "T",
			msgs: []chatlog.Message{textMsg("user", chatlog.Timestamp{},
				text("  one  "),
				chatlog.Part{Kind: chatlog.PartUnknown},
				chatlog.Part{Kind: chatlog.PartObject, Text: "two\n"},
			)},
			want: "# T\n\n**User (N/A):**\n\none\n\n---\n\n**User (N/A):**\n\ntwo\n\n---\n\n",
		},
		{
			name:  "no messages yields heading only",
			title: "Empty",
			want:  "# Empty\n\n",
		},
		{
			name:  "message without parts emits nothing",
			title: "T",
			msgs:  []chatlog.Message{textMsg("user", chatlog.At(1))},
			want:  "# T\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Render(context.Background(), tt.title, tt.msgs, nil, "")
			if got != tt.want {
				t.Errorf("Render() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRenderer_ResolvesBeforeTrimming(t *testing.T) {
	res := &upperResolver{}
	r := Renderer{Location: time.UTC}

	got := r.Render(context.Background(), "T",
		[]chatlog.Message{textMsg("user", chatlog.Timestamp{}, text(" see <file>a.png</file> "))},
		res, "/out/2023/May")

	if !strings.Contains(got, "\n\nSEE <FILE>A.PNG</FILE>\n\n") {
		t.Errorf("Render() = %q, want resolved and trimmed text", got)
	}
	if res.docDir != "/out/2023/May" {
		t.Errorf("resolver docDir = %q", res.docDir)
	}
}

func TestRenderer_Location(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	r := Renderer{Location: tokyo}

	got := r.Render(context.Background(), "T",
		[]chatlog.Message{textMsg("user", chatlog.At(1700000000), text("hi"))}, nil, "")

	if !strings.Contains(got, "(2023-11-15 07:13:20)") {
		t.Errorf("Render() = %q, want time in fixed zone", got)
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"user":      "User",
		"assistant": "Assistant",
		"TOOL":      "TOOL",
		"éclair":    "Éclair",
		"":          "",
	}
	for in, want := range tests {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}
