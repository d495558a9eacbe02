// Package config holds the server's startup settings. Every flag falls back
// to a BLOGPAD_* environment variable.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/blogpad/blogpad-mcp/internal/document"
	"github.com/blogpad/blogpad-mcp/internal/findreplace"
	"github.com/blogpad/blogpad-mcp/internal/logging"
)

// Environment variables read as flag defaults.
const (
	EnvPostsDir      = "BLOGPAD_POSTS_DIR"
	EnvBaseURL       = "BLOGPAD_BASE_URL"
	EnvWrapWidth     = "BLOGPAD_WRAP_WIDTH"
	EnvScrollContext = "BLOGPAD_SCROLL_CONTEXT"
	EnvLogLevel      = "BLOGPAD_LOG_LEVEL"
)

// Config is the resolved server configuration.
type Config struct {
	PostsDir      string
	BaseURL       string
	WrapWidth     int
	ScrollContext int
	LogLevel      string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		WrapWidth:     document.DefaultWidth,
		ScrollContext: findreplace.DefaultScrollContext,
	}
}

// BindFlags registers the configuration flags on fs. Defaults come from the
// environment, then from Default.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.StringVar(&c.PostsDir, "posts-dir", envString(EnvPostsDir, def.PostsDir),
		"directory holding the posts (default: current directory)")
	fs.StringVar(&c.BaseURL, "base-url", envString(EnvBaseURL, def.BaseURL),
		"absolute site URL used to build permalinks")
	fs.IntVar(&c.WrapWidth, "wrap-width", envInt(EnvWrapWidth, def.WrapWidth),
		"layout width in columns used to scroll matches into view")
	fs.IntVar(&c.ScrollContext, "scroll-context", envInt(EnvScrollContext, def.ScrollContext),
		"rows kept visible above the active match")
	fs.StringVar(&c.LogLevel, "log-level", envString(EnvLogLevel, def.LogLevel),
		"log level: debug, info, warn or error")
}

// Validate checks the configuration. PostsDir must already be resolved.
func (c Config) Validate() error {
	if c.PostsDir == "" {
		return fmt.Errorf("posts directory is not set")
	}
	info, err := os.Stat(c.PostsDir)
	if err != nil {
		return fmt.Errorf("posts directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("posts directory %s is not a directory", c.PostsDir)
	}

	if c.WrapWidth <= 0 {
		return fmt.Errorf("wrap width must be positive, got %d", c.WrapWidth)
	}
	if c.ScrollContext < 0 {
		return fmt.Errorf("scroll context cannot be negative, got %d", c.ScrollContext)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("base url: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base url %q must be an absolute http(s) URL", c.BaseURL)
		}
	}
	return nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
