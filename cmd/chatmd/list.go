package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gorewood/chatmd/internal/config"
	"github.com/gorewood/chatmd/internal/export"
)

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the conversations in an export",
		Long: `List every conversation in an export with its index, date folder, message
count and title. Indexes are what preview accepts.

Examples:
  chatmd list
  chatmd list --input export/conversations.json --json`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
	cmd.Flags().String("input", config.DefaultInput, "Path to conversations.json")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	input := sess.cfg.Input
	overrideString(cmd, "input", &input)

	doc, err := loadExport(input)
	if err != nil {
		return sess.fail(err)
	}

	items := export.List(doc, sess.location)
	if sess.printer.IsJSON() {
		return sess.printer.WriteJSON(map[string]any{"count": len(items), "conversations": items})
	}

	if len(items) == 0 {
		sess.printer.Println("No conversations found")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		messages := strconv.Itoa(item.Messages)
		switch {
		case item.Error != "":
			messages = "invalid"
		case item.Empty:
			messages = "-"
		}
		rows = append(rows, []string{strconv.Itoa(item.Index), item.Bucket, messages, item.Title})
	}
	sess.printer.Table([]string{"#", "Date", "Messages", "Title"}, rows)
	return nil
}
