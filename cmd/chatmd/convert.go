package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gorewood/chatmd/internal/archive"
	"github.com/gorewood/chatmd/internal/config"
	"github.com/gorewood/chatmd/internal/export"
	"github.com/gorewood/chatmd/internal/media"
	"github.com/gorewood/chatmd/internal/output"
	"github.com/gorewood/chatmd/internal/upload"
)

// convertResult is the JSON shape of a convert run.
type convertResult struct {
	export.Summary
	Downloaded int            `json:"images_downloaded,omitempty"`
	Archive    *archiveResult `json:"archive,omitempty"`
	Upload     *upload.Result `json:"upload,omitempty"`
}

type archiveResult struct {
	Path  string `json:"path"`
	Files int    `json:"files"`
}

// newConvertCmd creates the convert command.
func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an export into Markdown files",
		Long: `Convert every conversation in a ChatGPT export into a Markdown file under
<out>/<YYYY>/<Month>/. Conversations without messages are skipped. Existing
files for the same conversation are overwritten.

Image modes:
  link      <file>NAME</file> becomes a relative link into the image folder
  embed     <file>NAME</file> is inlined as a base64 data URI
  download  remote image URLs are fetched into the image folder and relinked

Examples:
  chatmd convert                                   # conversations.json -> markdown_chats/
  chatmd convert --input export/conversations.json --out notes
  chatmd convert --mode embed --images export/files
  chatmd convert --mode download --zip --upload    # fetch images, zip, upload`,
		RunE: runConvert,
	}

	cmd.Flags().String("input", config.DefaultInput, "Path to conversations.json")
	cmd.Flags().String("out", config.DefaultOutput, "Output root directory")
	cmd.Flags().String("images", config.DefaultImages, "Image folder")
	cmd.Flags().String("mode", config.DefaultMode, "Image mode: link, embed or download")
	cmd.Flags().Bool("zip", false, "Package the output into a zip archive")
	cmd.Flags().String("zip-name", config.DefaultZipName, "Archive file name")
	cmd.Flags().Bool("upload", false, "Upload the archive (implies --zip)")

	return cmd
}

func runConvert(cmd *cobra.Command, _ []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	cfg := sess.cfg

	overrideString(cmd, "input", &cfg.Input)
	overrideString(cmd, "out", &cfg.Output)
	overrideString(cmd, "images", &cfg.Images)
	overrideString(cmd, "mode", &cfg.Mode)
	overrideBool(cmd, "zip", &cfg.Zip)
	overrideString(cmd, "zip-name", &cfg.ZipName)
	doUpload, _ := cmd.Flags().GetBool("upload")

	mode, err := media.ParseMode(cfg.Mode)
	if err != nil {
		return sess.fail(output.NewUserErrorWithCause(err.Error(), err))
	}
	if doUpload && !cfg.UploadEnabled() {
		return sess.fail(output.NewUserError("upload is not configured; set upload.endpoint, upload.token_url and upload.client_id in " + displayConfigPath()))
	}

	doc, err := loadExport(cfg.Input)
	if err != nil {
		return sess.fail(err)
	}

	resolver, err := media.New(media.Config{Mode: mode, Folder: cfg.Images, Logger: sess.logger})
	if err != nil {
		return sess.fail(output.NewSystemErrorWithCause(err.Error(), err))
	}

	exporter := &export.Exporter{
		OutputRoot: cfg.Output,
		Resolver:   resolver,
		Renderer:   export.Renderer{Location: sess.location},
		Logger:     sess.logger,
	}
	summary, err := exporter.Run(cmd.Context(), doc)
	if err != nil {
		return sess.fail(err)
	}
	result := convertResult{Summary: summary}
	if dl, ok := resolver.(*media.DownloadResolver); ok {
		result.Downloaded = dl.Fetched()
	}

	if cfg.Zip || doUpload {
		dirs := []string{cfg.Output}
		if mode != media.ModeEmbed {
			dirs = append(dirs, cfg.Images)
		}
		n, err := archive.Zip(cfg.ZipName, dirs...)
		if err != nil {
			return sess.fail(output.NewSystemErrorWithCause(err.Error(), err))
		}
		result.Archive = &archiveResult{Path: cfg.ZipName, Files: n}
	}

	if doUpload {
		client := upload.New(cfg.Upload, os.Getenv(config.UploadClientSecretEnv), sess.logger)
		res, err := client.Upload(cmd.Context(), cfg.ZipName)
		if err != nil {
			return sess.fail(err)
		}
		result.Upload = res
	}

	return printConvertResult(sess.printer, result)
}

func printConvertResult(printer *output.Printer, result convertResult) error {
	if printer.IsJSON() {
		return printer.WriteJSON(result)
	}

	msg := fmt.Sprintf("Converted %d of %d conversations to %s", result.Converted, result.Total, result.Root)
	if err := printer.Success(map[string]any{"message": msg}); err != nil {
		return err
	}
	if result.Malformed > 0 {
		printer.Warn("%d conversations could not be decoded and were skipped (see log for details)", result.Malformed)
	}
	if empty := result.Skipped - result.Malformed; empty > 0 {
		printer.KeyValue("Skipped", fmt.Sprintf("%d empty conversations", empty))
	}
	if result.Downloaded > 0 {
		printer.KeyValue("Images", fmt.Sprintf("%d downloaded", result.Downloaded))
	}
	if result.Archive != nil {
		printer.KeyValue("Archive", fmt.Sprintf("%s (%d files)", result.Archive.Path, result.Archive.Files))
	}
	if result.Upload != nil {
		printer.KeyValue("Uploaded", fmt.Sprintf("%s (%d bytes, HTTP %d)", result.Upload.Name, result.Upload.Bytes, result.Upload.Status))
	}
	return nil
}
