package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("CHATMD_CONFIG_HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Input != DefaultInput {
		t.Errorf("Input = %q, want %q", cfg.Input, DefaultInput)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, want %q", cfg.Output, DefaultOutput)
	}
	if cfg.Mode != DefaultMode {
		t.Errorf("Mode = %q, want %q", cfg.Mode, DefaultMode)
	}
	if cfg.Zip {
		t.Error("Zip should default to false")
	}
	if !strings.HasSuffix(cfg.Upload.TokenFile, "token.json") {
		t.Errorf("Upload.TokenFile = %q", cfg.Upload.TokenFile)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `output: /srv/chats
mode: embed
zip: true
upload:
  endpoint: https://storage.example.com/upload
  token_url: https://auth.example.com/token
  client_id: chatmd
  scopes: [files.write]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "/srv/chats" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.Mode != "embed" {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if !cfg.Zip {
		t.Error("Zip = false, want true")
	}
	if cfg.Input != DefaultInput {
		t.Errorf("Input = %q, want default kept", cfg.Input)
	}
	if cfg.ZipName != DefaultZipName {
		t.Errorf("ZipName = %q, want default kept", cfg.ZipName)
	}
	if !cfg.UploadEnabled() {
		t.Error("UploadEnabled() = false, want true")
	}
	if len(cfg.Upload.Scopes) != 1 || cfg.Upload.Scopes[0] != "files.write" {
		t.Errorf("Scopes = %v", cfg.Upload.Scopes)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mode: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("error = %q, want to mention parsing config", err.Error())
	}
}

func TestLoad_EmptyPathUsesConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHATMD_CONFIG_HOME", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("images: media\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Images != "media" {
		t.Errorf("Images = %q, want %q", cfg.Images, "media")
	}
}

func TestUploadEnabled(t *testing.T) {
	cfg := Default()
	if cfg.UploadEnabled() {
		t.Error("default config should not enable upload")
	}
	cfg.Upload.Endpoint = "https://x"
	if cfg.UploadEnabled() {
		t.Error("endpoint alone should not enable upload")
	}
}

func TestConfig_Location(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		want     string
		wantErr  bool
	}{
		{name: "empty is local", timezone: "", want: "Local"},
		{name: "utc", timezone: "UTC", want: "UTC"},
		{name: "unknown zone", timezone: "Mars/Olympus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Timezone: tt.timezone}
			loc, err := cfg.Location()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Location() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && loc.String() != tt.want {
				t.Errorf("Location() = %q, want %q", loc.String(), tt.want)
			}
		})
	}
}
