// Package config resolves homepage settings from defaults, a config file and
// HOMEPAGE_* environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const appName = "homepage"

// Content sources accepted by content.source.
const (
	SourceFiles  = "files"
	SourceSQLite = "sqlite"
)

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, appName))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	// A missing file is fine; a broken one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		v.Set("data_dir", defaultDataDir())
	}
	v.Set("content.source", ContentSource(v))
	return nil
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/homepage or ~/.local/share/homepage
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, appName, "config.toml")
}

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "content_dir", Default: "", Comment: "Directory with posts.yaml, home.md and posts/; empty uses the built-in content"},
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; DB is data_dir/homepage.db"},
		{Key: "http_addr", Default: ":8080", Comment: "HTTP listen address for serve"},

		{Key: "content.source", Default: SourceFiles, Comment: "Where posts come from: files (content_dir or built-in) or sqlite (see import)"},

		{Key: "site.title", Default: "My Personal Page", Comment: "Site title shown in the browser tab"},
		{Key: "site.base_url", Default: "", Comment: "Public URL of the site; its path prefixes every link"},

		{Key: "render.highlight_style", Default: "dracula", Comment: "Chroma style for code blocks; empty disables highlighting"},
		{Key: "render.hard_wraps", Default: false, Comment: "Render single newlines as <br>"},
		{Key: "render.unsafe", Default: true, Comment: "Pass raw HTML in posts through to the page"},
		{Key: "render.sanitize", Default: false, Comment: "Run rendered HTML through a bluemonday UGC policy"},

		{Key: "tls.domain", Default: "", Comment: "Serve HTTPS for this domain with ACME certificates"},
		{Key: "tls.email", Default: "", Comment: "ACME account email"},
		{Key: "tls.http_addr", Default: ":80", Comment: "Address for the HTTP-01 challenge and HTTPS redirect"},
		{Key: "tls.cert_file", Default: "", Comment: "PEM certificate for HTTPS without ACME"},
		{Key: "tls.key_file", Default: "", Comment: "PEM private key for HTTPS without ACME"},

		{Key: "export.out_dir", Default: "public", Comment: "Output directory for build"},
	}
}

// ResolveDBPath returns the sqlite DB file path under data_dir.
func ResolveDBPath(v *viper.Viper) string {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	return filepath.Join(expandHome(dir), appName+".db")
}

// ResolveContentDir returns content_dir with ~ expanded, or "" when unset.
// ContentSource returns content.source trimmed and lowercased.
func ContentSource(v *viper.Viper) string {
	return strings.ToLower(strings.TrimSpace(v.GetString("content.source")))
}

func ResolveContentDir(v *viper.Viper) string {
	dir := strings.TrimSpace(v.GetString("content_dir"))
	if dir == "" {
		return ""
	}
	return expandHome(dir)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}
