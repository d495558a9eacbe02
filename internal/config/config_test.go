package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestBindFlags_Defaults(t *testing.T) {
	var cfg Config
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	require.Equal(t, Default(), cfg)
	require.Equal(t, 80, cfg.WrapWidth)
	require.Equal(t, 3, cfg.ScrollContext)
}

func TestBindFlags_EnvironmentThenFlags(t *testing.T) {
	t.Setenv(EnvBaseURL, "https://env.example.com")
	t.Setenv(EnvWrapWidth, "60")
	t.Setenv(EnvScrollContext, "not-a-number")

	var cfg Config
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--wrap-width", "100", "--log-level", "warn"}))

	require.Equal(t, "https://env.example.com", cfg.BaseURL)
	require.Equal(t, 100, cfg.WrapWidth)
	require.Equal(t, 3, cfg.ScrollContext, "unparsable env falls back to the default")
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	valid := Default()
	valid.PostsDir = dir

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "https base url", mutate: func(c *Config) { c.BaseURL = "https://blog.example.com/" }},
		{name: "missing dir", mutate: func(c *Config) { c.PostsDir = "" }, wantErr: "not set"},
		{name: "nonexistent dir", mutate: func(c *Config) { c.PostsDir = filepath.Join(dir, "nope") }, wantErr: "posts directory"},
		{name: "file as dir", mutate: func(c *Config) { c.PostsDir = file }, wantErr: "not a directory"},
		{name: "zero width", mutate: func(c *Config) { c.WrapWidth = 0 }, wantErr: "wrap width"},
		{name: "negative context", mutate: func(c *Config) { c.ScrollContext = -1 }, wantErr: "scroll context"},
		{name: "zero context", mutate: func(c *Config) { c.ScrollContext = 0 }},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log level"},
		{name: "relative base url", mutate: func(c *Config) { c.BaseURL = "blog.example.com" }, wantErr: "absolute"},
		{name: "ftp base url", mutate: func(c *Config) { c.BaseURL = "ftp://blog.example.com" }, wantErr: "absolute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
