package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used when neither the config file nor a flag sets a value.
const (
	DefaultInput    = "conversations.json"
	DefaultOutput   = "markdown_chats"
	DefaultImages   = "files"
	DefaultMode     = "link"
	DefaultZipName  = "chatgpt_markdown_archive.zip"
	DefaultLogLevel = "info"
)

// Config is the persisted chatmd settings file.
type Config struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Images   string `yaml:"images"`
	Mode     string `yaml:"mode"`
	Zip      bool   `yaml:"zip"`
	ZipName  string `yaml:"zip_name"`
	LogLevel string `yaml:"log_level"`
	Timezone string `yaml:"timezone"`

	Upload Upload `yaml:"upload"`
}

// Upload configures the archive upload target and its OAuth2 client.
// The client secret is never read from the file; see UploadClientSecretEnv.
type Upload struct {
	Endpoint    string   `yaml:"endpoint"`
	AuthURL     string   `yaml:"auth_url"`
	TokenURL    string   `yaml:"token_url"`
	RedirectURL string   `yaml:"redirect_url"`
	ClientID    string   `yaml:"client_id"`
	Scopes      []string `yaml:"scopes"`
	TokenFile   string   `yaml:"token_file"`
}

// UploadClientSecretEnv names the environment variable holding the OAuth2 client secret.
const UploadClientSecretEnv = "CHATMD_UPLOAD_CLIENT_SECRET"

// Default returns a Config populated with built-in defaults.
func Default() Config {
	cfg := Config{
		Input:    DefaultInput,
		Output:   DefaultOutput,
		Images:   DefaultImages,
		Mode:     DefaultMode,
		ZipName:  DefaultZipName,
		LogLevel: DefaultLogLevel,
	}
	if dir := Dir(); dir != "" {
		cfg.Upload.TokenFile = filepath.Join(dir, "token.json")
	}
	return cfg
}

// Load reads the settings file at path and overlays it on Default().
// A missing file is not an error. An empty path loads DefaultPath().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Location returns the zone message times are rendered and bucketed in.
// An empty Timezone means the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// UploadEnabled reports whether enough upload settings exist to attempt an upload.
func (c Config) UploadEnabled() bool {
	return c.Upload.Endpoint != "" && c.Upload.TokenURL != "" && c.Upload.ClientID != ""
}
