package ingest

import (
	"strings"
	"testing"
)

func TestStripHTML(t *testing.T) {
	in := `<html><head><title>Report</title><style>body{color:red}</style></head>
<body><h1>Executive Summary</h1><p>Revenue grew <b>15%</b> this quarter.</p>
<script>alert("x")</script></body></html>`

	got := StripHTML(in)

	for _, want := range []string{"Report", "Executive Summary", "Revenue grew", "15%"} {
		if !strings.Contains(got, want) {
			t.Errorf("stripped text missing %q: %q", want, got)
		}
	}
	for _, banned := range []string{"alert", "color:red", "<p>"} {
		if strings.Contains(got, banned) {
			t.Errorf("stripped text should not contain %q: %q", banned, got)
		}
	}
}

func TestStripHTMLCollapsesWhitespace(t *testing.T) {
	got := StripHTML("<p>one</p>\n\n<p>two</p>")
	if got != "one two" {
		t.Fatalf("expected %q, got %q", "one two", got)
	}
}

func TestStripHTMLPlainText(t *testing.T) {
	// Plain text survives the round trip since html.Parse accepts it.
	got := StripHTML("just plain text")
	if got != "just plain text" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}
