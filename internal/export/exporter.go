package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gorewood/chatmd/internal/atomicfile"
	"github.com/gorewood/chatmd/internal/chatlog"
	"github.com/gorewood/chatmd/internal/media"
	"github.com/gorewood/chatmd/internal/output"
)

// UnknownBucket names both path segments for conversations with no usable timestamp.
const UnknownBucket = "unknown"

// Summary reports the outcome of one export run.
type Summary struct {
	RunID     string   `json:"run_id"`
	Root      string   `json:"root"`
	Total     int      `json:"total"`
	Converted int      `json:"converted"`
	Skipped   int      `json:"skipped"`
	Malformed int      `json:"malformed"`
	Files     []string `json:"files"`
}

// Exporter writes every non-empty conversation of a document to OutputRoot.
type Exporter struct {
	OutputRoot string
	Resolver   media.Resolver
	Renderer   Renderer
	Logger     *slog.Logger
}

// Run exports doc. Empty and malformed conversations are skipped and counted. Directory
// and write failures abort the run with a system error; files written
// before the failure are left in place.
func (e *Exporter) Run(ctx context.Context, doc *chatlog.Document) (Summary, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	summary := Summary{
		RunID: uuid.NewString(),
		Root:  e.OutputRoot,
		Files: []string{},
	}
	if doc == nil {
		return summary, nil
	}
	summary.Total = len(doc.Conversations)
	logger = logger.With("run_id", summary.RunID)

	for i, conv := range doc.Conversations {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("export interrupted: %w", err)
		}

		if conv.Err != nil {
			logger.Warn("skipping malformed conversation", "index", i, "error", conv.Err)
			summary.Skipped++
			summary.Malformed++
			continue
		}

		msgs := conv.Messages()
		if len(msgs) == 0 {
			logger.Debug("skipping empty conversation", "index", i, "title", conv.Title)
			summary.Skipped++
			continue
		}

		path, err := e.writeConversation(ctx, i, conv, msgs)
		if err != nil {
			return summary, err
		}

		logger.Debug("wrote conversation", "index", i, "path", path, "messages", len(msgs))
		summary.Converted++
		summary.Files = append(summary.Files, path)
	}

	logger.Info("export finished",
		"total", summary.Total, "converted", summary.Converted, "skipped", summary.Skipped, "malformed", summary.Malformed)
	return summary, nil
}

// Destination returns the output path for conversation i with the given messages.
func (e *Exporter) Destination(i int, conv chatlog.Conversation, msgs []chatlog.Message) string {
	year, month := Bucket(msgs, e.Renderer.location())
	return filepath.Join(e.OutputRoot, year, month, conv.FileName(i)+".md")
}

func (e *Exporter) writeConversation(ctx context.Context, i int, conv chatlog.Conversation, msgs []chatlog.Message) (string, error) {
	path := e.Destination(i, conv, msgs)
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", output.NewSystemErrorWithCause(fmt.Sprintf("failed to create directory %s", dir), err)
	}

	content := e.Renderer.Render(ctx, conv.DisplayTitle(i), msgs, e.Resolver, dir)
	if err := atomicfile.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", output.NewSystemErrorWithCause(fmt.Sprintf("failed to write file %s", path), err)
	}
	return path, nil
}

// Bucket returns the year and English month name of the first message with
// a usable timestamp, or unknown/unknown when none has one.
func Bucket(msgs []chatlog.Message, loc *time.Location) (string, string) {
	if loc == nil {
		loc = time.Local
	}
	for _, msg := range msgs {
		if msg.CreateTime.Usable() {
			t := msg.CreateTime.Time(loc)
			return strconv.Itoa(t.Year()), t.Month().String()
		}
	}
	return UnknownBucket, UnknownBucket
}
