package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func sampleReports() []DocumentReport {
	return []DocumentReport{{
		File:        "scan.pdf",
		Pages:       2,
		Searchified: 1,
		PageReports: []PageReport{
			{Page: 1, Images: 1, Searchified: true, Text: "invoice | 42\nnet 30"},
			{Page: 2, Images: 0},
		},
	}}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in   string
		want OutputFormat
		ok   bool
	}{
		{"yaml", OutputFormatYAML, true},
		{"JSON", OutputFormatJSON, true},
		{"md", OutputFormatMarkdown, true},
		{"markdown", OutputFormatMarkdown, true},
		{"html", OutputFormatHTML, true},
		{"xml", "", false},
	}
	for _, tt := range tests {
		got, err := parseOutputFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("parseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestTableCell(t *testing.T) {
	if got := tableCell("a |  b\n c", 80); got != `a \| b c` {
		t.Fatalf("tableCell = %q", got)
	}
	if got := tableCell("abcdef", 3); got != "abc…" {
		t.Fatalf("truncated cell = %q", got)
	}
}

func TestWriteReportsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReports(&buf, OutputFormatJSON, sampleReports()); err != nil {
		t.Fatalf("writeReports() error = %v", err)
	}
	var got []DocumentReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 1 || got[0].Searchified != 1 || len(got[0].PageReports) != 2 {
		t.Fatalf("unexpected reports: %+v", got)
	}
}

func TestWriteReportsYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReports(&buf, OutputFormatYAML, sampleReports()); err != nil {
		t.Fatalf("writeReports() error = %v", err)
	}
	if !strings.Contains(buf.String(), "page_reports:") {
		t.Fatalf("yaml missing page_reports:\n%s", buf.String())
	}
	var got []DocumentReport
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if got[0].PageReports[0].Text != "invoice | 42\nnet 30" {
		t.Fatalf("text = %q", got[0].PageReports[0].Text)
	}
}

func TestWriteReportsMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReports(&buf, OutputFormatMarkdown, sampleReports()); err != nil {
		t.Fatalf("writeReports() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"## scan.pdf",
		"1 of 2 pages searchified.",
		`| 1 | 1 | yes | invoice \| 42 net 30 |`,
		"| 2 | 0 | no |  |",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportsHTML(t *testing.T) {
	reports := sampleReports()
	reports[0].Error = "ocr service disconnected"
	var buf bytes.Buffer
	if err := writeReports(&buf, OutputFormatHTML, reports); err != nil {
		t.Fatalf("writeReports() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<h2>scan.pdf</h2>", "<table>", ">yes</td>", "<strong>Error:</strong>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("html missing %q:\n%s", want, out)
		}
	}
}

func TestIsPDF(t *testing.T) {
	if !isPDF("/in/A.PDF") || isPDF("/in/a.pdf.tmp") || isPDF("notes.txt") {
		t.Fatalf("isPDF classification wrong")
	}
}
