package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/gorewood/chatmd/internal/config"
	chatmdmcp "github.com/gorewood/chatmd/internal/mcp"
	"github.com/gorewood/chatmd/internal/media"
	"github.com/gorewood/chatmd/internal/output"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run chatmd as a Model Context Protocol (MCP) server over stdio.

This exposes export inspection and conversion as MCP tools that any
MCP-capable agent environment can use.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "chatmd": {
        "command": "chatmd",
        "args": ["serve", "--input", "/path/to/conversations.json"]
      }
    }
  }

Available tools: list_conversations, render_conversation, convert

Logs go to stderr so they never mix with the protocol stream.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("input", config.DefaultInput, "Default path to conversations.json")
	cmd.Flags().String("out", config.DefaultOutput, "Default output root")
	cmd.Flags().String("images", config.DefaultImages, "Default image folder")
	cmd.Flags().String("mode", config.DefaultMode, "Default image mode: link, embed or download")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	cfg := sess.cfg
	overrideString(cmd, "input", &cfg.Input)
	overrideString(cmd, "out", &cfg.Output)
	overrideString(cmd, "images", &cfg.Images)
	overrideString(cmd, "mode", &cfg.Mode)

	mode, err := media.ParseMode(cfg.Mode)
	if err != nil {
		return sess.fail(output.NewUserErrorWithCause(err.Error(), err))
	}

	server := chatmdmcp.NewServer(buildVersion(), chatmdmcp.Settings{
		Input:    cfg.Input,
		Output:   cfg.Output,
		Images:   cfg.Images,
		Mode:     mode,
		Location: sess.location,
		Logger:   sess.logger,
	})
	sess.logger.Info("mcp server starting", "input", cfg.Input, "output", cfg.Output, "mode", mode)
	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}
