// Command lynxget fetches a URL and prints clean, structured article
// content, falling back through multiple extraction strategies and, when
// the live site is blocking automated requests, through web archives.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/lynxget/internal/config"
	"github.com/use-agent/lynxget/internal/cookiejar"
	"github.com/use-agent/lynxget/internal/extract"
	"github.com/use-agent/lynxget/internal/fetchstage"
	"github.com/use-agent/lynxget/internal/markdownconv"
	"github.com/use-agent/lynxget/internal/telemetry"
	"github.com/use-agent/lynxget/internal/transport"
)

// Exit codes, per the CLI's external-interface contract.
const (
	exitOK            = 0
	exitGenericError  = 1
	exitInvalidInput  = 1
	exitAntibotBlocked = 1
	exitNetworkError  = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		asJSON           bool
		raw              bool
		detect           bool
		quiet            bool
		preset           string
		timeout          time.Duration
		includeSelectors []string
		excludeSelectors []string
	)

	cfg := config.Load()
	initLogger(cfg.Log)

	root := &cobra.Command{
		Use:           "lynxget <url>",
		Short:         "Fetch a URL and print clean, structured article content",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().BoolVar(&asJSON, "json", cfg.CLI.DefaultJSON, "print the full result as JSON")
	root.Flags().BoolVar(&raw, "raw", false, "print the raw extracted HTML instead of Markdown")
	root.Flags().BoolVar(&detect, "detect", false, "print anti-bot detection diagnostics instead of content")
	root.Flags().BoolVarP(&quiet, "quiet", "q", cfg.CLI.DefaultQuiet, "suppress log output")
	root.Flags().StringVar(&preset, "preset", "", "TLS fingerprint preset name; not applied, requests always use the Chrome fingerprint")
	root.Flags().DurationVar(&timeout, "timeout", cfg.Fetch.Timeout, "fetch timeout")
	root.Flags().StringArrayVar(&includeSelectors, "include-selector", nil, "CSS selector content must match to be kept (repeatable)")
	root.Flags().StringArrayVar(&excludeSelectors, "exclude-selector", nil, "CSS selector whose matches are dropped from the content (repeatable)")

	exitCode := exitOK
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if quiet {
			slog.SetDefault(slog.New(slog.DiscardHandler))
		}
		code, err := execute(cmd.Context(), cfg, args[0], asJSON, raw, detect, timeout, includeSelectors, excludeSelectors)
		exitCode = code
		return err
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lynxget:", err)
		if exitCode == exitOK {
			exitCode = exitGenericError
		}
	}
	return exitCode
}

func execute(ctx context.Context, cfg *config.Config, url string, asJSON, raw, detect bool, timeout time.Duration, includeSelectors, excludeSelectors []string) (int, error) {
	var opts []transport.Option
	if cfg.Fetch.Proxy != "" {
		opts = append(opts, transport.WithProxy(cfg.Fetch.Proxy))
	}
	if cfg.Fetch.CookieFile != "" {
		jar, err := cookiejar.LoadFile(cfg.Fetch.CookieFile)
		if err == nil {
			opts = append(opts, transport.WithCookieJar(jar))
		} else {
			slog.Warn("could not load cookie file", "path", cfg.Fetch.CookieFile, "error", err)
		}
	}
	t := transport.New(opts...)
	fetcher := transport.SimpleFetcher{Client: t}

	orchestrator := extract.New(extract.WithFetcher(fetcher))
	defer orchestrator.Close()

	md, err := markdownconv.New()
	if err != nil {
		return exitGenericError, err
	}

	var sink *telemetry.Sink
	if cfg.Telemetry.DBPath != "" {
		sink, err = telemetry.Open(ctx, cfg.Telemetry.DBPath, cfg.Telemetry.RecordHTML)
		if err != nil {
			slog.Warn("telemetry disabled: could not open database", "error", err)
		} else {
			defer sink.Close()
		}
	}

	stage := fetchstage.New(t, orchestrator, md, fetchstage.StageConfig{
		UseArchiveFallback: true,
		IncludeSelectors:   includeSelectors,
		ExcludeSelectors:   excludeSelectors,
	})
	defer stage.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := stage.Fetch(fetchCtx, url)

	if sink != nil && result != nil {
		recErr := ""
		if err != nil {
			recErr = err.Error()
		}
		_ = sink.Record(ctx, telemetry.Run{
			URL:        url,
			Success:    err == nil,
			StatusCode: result.Fetch.StatusCode,
			Latency:    result.Fetch.Duration,
			Method:     "lynxget",
			Error:      recErr,
			RawHTML:    result.Fetch.Body,
			Detections: result.Detections,
		})
	}

	if err != nil {
		var fe *fetchstage.FetchError
		if errors.As(err, &fe) {
			switch fe.Tag {
			case fetchstage.ErrTagInvalidURL:
				return exitInvalidInput, err
			case fetchstage.ErrTagHTTPError, fetchstage.ErrTagRateLimited,
				fetchstage.ErrTagWrongContentType, fetchstage.ErrTagBodyTooSmall,
				fetchstage.ErrTagInsufficientContent, fetchstage.ErrTagNotArchived,
				fetchstage.ErrTagNoArchiveAvailable:
				if detect && result != nil {
					printJSON(result.Detections)
					return exitAntibotBlocked, nil
				}
				return exitAntibotBlocked, err
			case fetchstage.ErrTagNetwork:
				return exitNetworkError, err
			}
		}
		return exitGenericError, err
	}

	if detect {
		printJSON(result.Detections)
		return exitOK, nil
	}
	if asJSON {
		printJSON(result.Extraction)
		return exitOK, nil
	}
	if raw {
		fmt.Println(result.Extraction.ContentHTML)
		return exitOK, nil
	}
	fmt.Println(result.Extraction.Markdown)
	return exitOK, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func initLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
