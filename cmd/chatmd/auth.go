package main

import (
	"bufio"
	"errors"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gorewood/chatmd/internal/config"
	"github.com/gorewood/chatmd/internal/output"
	"github.com/gorewood/chatmd/internal/upload"
)

// newAuthCmd creates the auth command.
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize archive uploads",
		Long: `Run the OAuth2 authorization-code flow for the upload endpoint.

chatmd prints an authorization URL. Open it, grant access, and paste either
the code you are given or the full URL you were redirected to. A pasted URL
must carry the state chatmd generated; a bare code or --code cannot be checked
against it. The token is stored in the credential file (upload.token_file)
and refreshed automatically on later uploads.

The client secret is read from ` + config.UploadClientSecretEnv + `, which may
be set in .env.local, .env or the chatmd env file.

Examples:
  chatmd auth
  chatmd auth --code 4/0AbC...   # non-interactive`,
		Args: cobra.NoArgs,
		RunE: runAuth,
	}
	cmd.Flags().String("code", "", "Authorization code (skips the interactive prompt)")
	return cmd
}

func runAuth(cmd *cobra.Command, _ []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	cfg := sess.cfg
	if cfg.Upload.TokenURL == "" || cfg.Upload.ClientID == "" {
		return sess.fail(output.NewUserError("upload is not configured; set upload.token_url and upload.client_id in " + displayConfigPath()))
	}

	client := upload.New(cfg.Upload, os.Getenv(config.UploadClientSecretEnv), sess.logger)

	code, _ := cmd.Flags().GetString("code")
	if code == "" {
		if cfg.Upload.AuthURL == "" {
			return sess.fail(output.NewUserError("upload.auth_url is not configured; pass --code instead"))
		}
		state := uuid.NewString()
		sess.printer.Stderr("Open this URL to authorize chatmd:\n\n  %s\n\nPaste the authorization code or redirect URL: ", client.AuthCodeURL(state))
		line, err := readLine(cmd)
		if err != nil {
			return sess.fail(output.NewUserErrorWithCause("no authorization code entered", err))
		}
		code, err = authCodeFromInput(line, state)
		if err != nil {
			return sess.fail(err)
		}
	}

	if err := client.Authorize(cmd.Context(), code); err != nil {
		return sess.fail(err)
	}

	return sess.printer.Success(map[string]any{
		"message":    "Upload authorized; token saved to " + cfg.Upload.TokenFile,
		"token_file": cfg.Upload.TokenFile,
	})
}

// readLine reads one line from the command's input.
func readLine(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err == nil {
			err = errors.New("empty input")
		}
		return "", err
	}
	return line, nil
}

// authCodeFromInput extracts the authorization code from pasted input. A
// redirect URL must carry a code and a state equal to want; anything else is
// taken as the bare code.
func authCodeFromInput(input, want string) (string, error) {
	u, err := url.Parse(input)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return input, nil
	}

	query := u.Query()
	if msg := query.Get("error"); msg != "" {
		return "", output.NewUserError("authorization was denied: " + msg)
	}
	if got := query.Get("state"); got != want {
		return "", output.NewUserError("authorization state mismatch; run 'chatmd auth' again")
	}
	code := query.Get("code")
	if code == "" {
		return "", output.NewUserError("redirect URL has no code parameter")
	}
	return code, nil
}
