// Package main implements the MCP server for blogpad posts.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/blogpad/blogpad-mcp/internal/config"
	"github.com/blogpad/blogpad-mcp/internal/frontmatter"
	"github.com/blogpad/blogpad-mcp/internal/logging"
	"github.com/blogpad/blogpad-mcp/internal/pathfilter"
	"github.com/blogpad/blogpad-mcp/internal/posts"
	"github.com/blogpad/blogpad-mcp/internal/search"
	"github.com/blogpad/blogpad-mcp/internal/workspace"
)

const appName = "blogpad-mcp"

var (
	store         *posts.Service
	searchService *search.Service
	editor        *workspace.Workspace
	baseURL       string
)

func main() {
	var cfg config.Config

	cmd := &cobra.Command{
		Use:   "blogpad-mcp [posts-dir]",
		Short: "MCP server for writing and editing blog posts",
		Long: `blogpad-mcp is a Model Context Protocol (MCP) server for a directory of
blog posts stored as markdown with YAML frontmatter. Besides reading and
writing posts it keeps posts open as live documents with an editor-style
find and replace: matches are highlighted in place, navigated one by one
and replaced without disturbing the surrounding formatting.`,
		Example: `blogpad-mcp ~/blog/posts
blogpad-mcp --posts-dir ~/blog/posts --base-url https://blog.example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), cfg, args)
		},
	}
	cfg.BindFlags(cmd.Flags())

	if err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg config.Config, args []string) error {
	if len(args) > 0 {
		cfg.PostsDir = args[0]
	}
	if cfg.PostsDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		cfg.PostsDir = wd
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logPath := logging.Init(appName, logging.Options{Level: cfg.LogLevel})
	defer logging.Sync()

	pf := pathfilter.New(nil)
	fh := frontmatter.New()
	store = posts.New(cfg.PostsDir, pf, fh)
	searchService = search.New(store)
	editor = workspace.New(store,
		workspace.WithWidth(cfg.WrapWidth),
		workspace.WithScrollContext(cfg.ScrollContext),
	)
	defer editor.CloseAll()
	baseURL = cfg.BaseURL

	logging.L().Infow("starting server",
		"postsDir", store.GetPostsDir(),
		"version", version,
		"log", logPath,
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    appName,
		Version: version,
	}, nil)

	registerTools(server)
	registerEditorTools(server)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logging.L().Errorw("server stopped", "error", err)
		return fmt.Errorf("error running server: %w", err)
	}

	return nil
}
