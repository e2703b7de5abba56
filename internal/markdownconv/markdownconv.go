// Package markdownconv converts extracted HTML into Markdown via
// html-to-markdown/v2, the same converter/plugin stack the teacher uses.
package markdownconv

import (
	"log/slog"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/use-agent/lynxget/internal/sanitize"
)

// Converter wraps a reusable *converter.Converter.
type Converter struct {
	conv *converter.Converter
}

func New() (*Converter, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal)),
		),
	)
	return &Converter{conv: conv}, nil
}

// HTMLToMarkdown converts htmlStr to Markdown, resolving relative links
// against domain. It never panics: a conversion failure is logged and the
// visible text is returned as a plain-text degraded fallback.
func (c *Converter) HTMLToMarkdown(htmlStr, domain string) (out string) {
	if htmlStr == "" {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("markdownconv: recovered from panic", "panic", r)
			out = sanitize.VisibleText(htmlStr)
		}
	}()

	var opts []converter.ConvertOptionFunc
	if domain != "" {
		opts = append(opts, converter.WithDomain(domain))
	}
	out, err := c.conv.ConvertString(htmlStr, opts...)
	if err != nil {
		slog.Debug("markdownconv: conversion failed, returning visible text", "error", err)
		return sanitize.VisibleText(htmlStr)
	}
	return out
}
