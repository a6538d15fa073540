package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/chatmd/internal/chatlog"
	"github.com/gorewood/chatmd/internal/config"
	"github.com/gorewood/chatmd/internal/output"
)

// session bundles what every command resolves before doing work.
type session struct {
	cfg      config.Config
	logger   *slog.Logger
	location *time.Location
	printer  *output.Printer
}

// newSession loads the config file and applies root flag overrides.
// Errors are printed before being returned.
func newSession(cmd *cobra.Command) (*session, error) {
	printer := newPrinter(cmd)

	cfg, err := config.Load(persistentFlag(cmd, "config"))
	if err != nil {
		userErr := output.NewUserErrorWithCause(err.Error(), err)
		printer.Error(userErr)
		return nil, userErr
	}
	if level := persistentFlag(cmd, "log-level"); level != "" {
		cfg.LogLevel = level
	}
	if tz := persistentFlag(cmd, "tz"); tz != "" {
		cfg.Timezone = tz
	}

	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return nil, userErr
	}

	loc, err := cfg.Location()
	if err != nil {
		userErr := output.NewUserErrorWithCause(err.Error(), err)
		printer.Error(userErr)
		return nil, userErr
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return &session{cfg: cfg, logger: logger, location: loc, printer: printer}, nil
}

// fail prints err and returns it for RunE.
func (s *session) fail(err error) error {
	s.printer.Error(err)
	return err
}

// parseLogLevel maps a level name to a slog level.
func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", name)
	}
}

// overrideString copies a flag value into dst when the flag was set explicitly.
func overrideString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

// overrideBool copies a flag value into dst when the flag was set explicitly.
func overrideBool(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetBool(name)
	}
}

// loadExport reads the export and maps load failures to exit codes:
// a missing file is the user's mistake, anything else is a system error.
func loadExport(path string) (*chatlog.Document, error) {
	doc, err := chatlog.Load(path)
	if err == nil {
		return doc, nil
	}

	var loadErr *chatlog.LoadError
	if errors.As(err, &loadErr) && loadErr.NotFound() {
		return nil, output.NewUserErrorWithCause(fmt.Sprintf("export file not found: %s", path), err)
	}
	return nil, output.NewSystemErrorWithCause(err.Error(), err)
}
