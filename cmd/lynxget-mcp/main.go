// Command lynxget-mcp exposes lynxget's fetch/extract pipeline as an MCP
// tool so agent harnesses can call it directly over stdio, without
// shelling out to the lynxget CLI binary.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/lynxget/internal/config"
	"github.com/use-agent/lynxget/internal/extract"
	"github.com/use-agent/lynxget/internal/fetchstage"
	"github.com/use-agent/lynxget/internal/markdownconv"
	"github.com/use-agent/lynxget/internal/transport"
)

func main() {
	cfg := config.Load()
	initLogger(cfg.Log)

	t := transport.New()
	fetcher := transport.SimpleFetcher{Client: t}
	orchestrator := extract.New(extract.WithFetcher(fetcher))
	defer orchestrator.Close()

	md, err := markdownconv.New()
	if err != nil {
		slog.Error("failed to init markdown converter", "error", err)
		os.Exit(1)
	}

	stage := fetchstage.New(t, orchestrator, md, fetchstage.StageConfig{UseArchiveFallback: true})
	defer stage.Close()

	s := server.NewMCPServer("lynxget-mcp", "0.1.0")

	fetchTool := mcp.NewTool("fetch_article",
		mcp.WithDescription("Fetch a URL and return clean, structured article content plus anti-bot diagnostics"),
		mcp.WithString("url", mcp.Required(), mcp.Description("the URL to fetch")),
		mcp.WithBoolean("include_html", mcp.Description("also return the sanitized HTML alongside Markdown")),
	)

	s.AddTool(fetchTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := req.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		includeHTML := req.GetBool("include_html", false)

		result, err := stage.Fetch(ctx, url)
		if err != nil {
			if result == nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}

		text := result.Extraction.Markdown
		if includeHTML {
			text = result.Extraction.ContentHTML + "\n\n---\n\n" + text
		}
		return mcp.NewToolResultText(text), nil
	})

	if err := server.ServeStdio(s); err != nil {
		slog.Error("mcp server exited", "error", err)
		os.Exit(1)
	}
}

func initLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	slog.SetDefault(slog.New(handler))
}
