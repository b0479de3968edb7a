package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how reports are printed.
type OutputFormat string

const (
	OutputFormatYAML     OutputFormat = "yaml"
	OutputFormatJSON     OutputFormat = "json"
	OutputFormatMarkdown OutputFormat = "markdown"
	OutputFormatHTML     OutputFormat = "html"
)

func parseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputFormatYAML, OutputFormatJSON, OutputFormatMarkdown, OutputFormatHTML:
		return f, nil
	case "md":
		return OutputFormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format: %s", s)
}

// writeReports writes reports to w in format.
func writeReports(w io.Writer, format OutputFormat, reports []DocumentReport) error {
	switch format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(reports)
	case OutputFormatMarkdown:
		_, err := io.WriteString(w, markdownReport(reports))
		return err
	case OutputFormatHTML:
		md := goldmark.New(goldmark.WithExtensions(extension.Table))
		var buf bytes.Buffer
		if err := md.Convert([]byte(markdownReport(reports)), &buf); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func markdownReport(reports []DocumentReport) string {
	var b strings.Builder
	for _, r := range reports {
		fmt.Fprintf(&b, "## %s\n\n", r.File)
		if r.Error != "" {
			fmt.Fprintf(&b, "**Error:** %s\n\n", r.Error)
		}
		fmt.Fprintf(&b, "%d of %d pages searchified.\n\n", r.Searchified, r.Pages)
		if len(r.PageReports) == 0 {
			continue
		}
		b.WriteString("| Page | Images | Searchified | Text |\n")
		b.WriteString("|---:|---:|:---:|---|\n")
		for _, p := range r.PageReports {
			mark := "no"
			if p.Searchified {
				mark = "yes"
			}
			fmt.Fprintf(&b, "| %d | %d | %s | %s |\n", p.Page, p.Images, mark, tableCell(p.Text, 80))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// tableCell flattens text into a single table cell of at most limit runes.
func tableCell(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	text = strings.ReplaceAll(text, "|", `\|`)
	if r := []rune(text); len(r) > limit {
		text = string(r[:limit]) + "…"
	}
	return text
}
