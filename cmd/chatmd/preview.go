package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/gorewood/chatmd/internal/config"
	"github.com/gorewood/chatmd/internal/export"
	"github.com/gorewood/chatmd/internal/media"
	"github.com/gorewood/chatmd/internal/output"
)

// newPreviewCmd creates the preview command.
func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <index>",
		Short: "Render one conversation to the terminal",
		Long: `Render a single conversation exactly as convert would write it, without
writing anything. On a terminal the Markdown is styled; use --raw (or pipe the
output) for plain Markdown.

Download mode is not available here; link is used instead.

Examples:
  chatmd preview 0
  chatmd preview 12 --raw > chat.md
  chatmd preview 3 --mode embed --images export/files`,
		Args: cobra.ExactArgs(1),
		RunE: runPreview,
	}

	cmd.Flags().String("input", config.DefaultInput, "Path to conversations.json")
	cmd.Flags().String("out", config.DefaultOutput, "Output root that image links are relative to")
	cmd.Flags().String("images", config.DefaultImages, "Image folder")
	cmd.Flags().String("mode", config.DefaultMode, "Image mode: link or embed")
	cmd.Flags().Bool("raw", false, "Print plain Markdown without terminal styling")
	cmd.Flags().Int("width", 100, "Word wrap width for styled output")

	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	cfg := sess.cfg
	overrideString(cmd, "input", &cfg.Input)
	overrideString(cmd, "out", &cfg.Output)
	overrideString(cmd, "images", &cfg.Images)
	overrideString(cmd, "mode", &cfg.Mode)
	raw, _ := cmd.Flags().GetBool("raw")
	width, _ := cmd.Flags().GetInt("width")

	index, err := strconv.Atoi(args[0])
	if err != nil || index < 0 {
		return sess.fail(output.NewUserError(fmt.Sprintf("invalid index %q: must be a non-negative integer", args[0])))
	}

	mode, err := media.ParseMode(cfg.Mode)
	if err != nil {
		return sess.fail(output.NewUserErrorWithCause(err.Error(), err))
	}
	if mode == media.ModeDownload {
		mode = media.ModeLink
	}

	doc, err := loadExport(cfg.Input)
	if err != nil {
		return sess.fail(err)
	}
	if index >= len(doc.Conversations) {
		return sess.fail(output.NewUserError(fmt.Sprintf("index %d out of range: export has %d conversations", index, len(doc.Conversations))))
	}

	resolver, err := media.New(media.Config{Mode: mode, Folder: cfg.Images, Logger: sess.logger})
	if err != nil {
		return sess.fail(output.NewSystemErrorWithCause(err.Error(), err))
	}

	conv := doc.Conversations[index]
	if conv.Err != nil {
		return sess.fail(output.NewUserErrorWithCause(fmt.Sprintf("conversation %d could not be decoded: %v", index, conv.Err), conv.Err))
	}
	msgs := conv.Messages()
	exporter := export.Exporter{OutputRoot: cfg.Output, Renderer: export.Renderer{Location: sess.location}}
	path := exporter.Destination(index, conv, msgs)
	title := conv.DisplayTitle(index)
	markdown := exporter.Renderer.Render(cmd.Context(), title, msgs, resolver, filepath.Dir(path))

	if sess.printer.IsJSON() {
		return sess.printer.WriteJSON(map[string]any{
			"index":    index,
			"title":    title,
			"path":     path,
			"messages": len(msgs),
			"markdown": markdown,
		})
	}

	if raw || !sess.printer.IsTTY() {
		sess.printer.Print("%s", markdown)
		return nil
	}
	sess.printer.Print("%s", styleMarkdown(markdown, width))
	return nil
}

// styleMarkdown renders markdown for the terminal, falling back to the
// plain text when the renderer cannot be built or fails.
func styleMarkdown(markdown string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	styled, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return styled
}
