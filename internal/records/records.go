// Package records reads raw record batches from disk and writes
// classified results back out. It is the seam between the acquisition
// collaborator's files and the engine: JSON array and JSONL intake,
// HTML cleanup of harvested descriptions, JSON result output.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/phylobot/phylo/pkg/phylo/record"
)

// Malformed reports one input entry that failed to decode. Entry is
// the 1-based array position or JSONL line number.
type Malformed struct {
	Entry  int
	Reason string
}

// LoadFile reads a batch of raw records from path. The file may be a
// JSON array of record objects or JSONL with one object per line;
// entries that fail to decode are reported, not fatal.
func LoadFile(path string) ([]record.RawRecord, []Malformed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read records %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a record batch, sniffing the format from the first
// non-blank byte: '[' selects the JSON array form, anything else JSONL.
func Parse(data []byte) ([]record.RawRecord, []Malformed, error) {
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '[' {
		return parseArray(data)
	}
	recs, bad := parseLines(data)
	return recs, bad, nil
}

func parseArray(data []byte) ([]record.RawRecord, []Malformed, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, nil, fmt.Errorf("parse record array: %w", err)
	}

	var recs []record.RawRecord
	var bad []Malformed
	for i, elem := range elems {
		var r record.RawRecord
		if err := json.Unmarshal(elem, &r); err != nil {
			bad = append(bad, Malformed{Entry: i + 1, Reason: err.Error()})
			continue
		}
		recs = append(recs, cleaned(r))
	}
	return recs, bad, nil
}

func parseLines(data []byte) ([]record.RawRecord, []Malformed) {
	var recs []record.RawRecord
	var bad []Malformed
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var r record.RawRecord
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			bad = append(bad, Malformed{Entry: i + 1, Reason: err.Error()})
			continue
		}
		recs = append(recs, cleaned(r))
	}
	return recs, bad
}

// cleaned strips markup from descriptions harvested off web pages.
// Plain-text descriptions pass through untouched.
func cleaned(r record.RawRecord) record.RawRecord {
	if strings.ContainsRune(r.Description, '<') {
		r.Description = stripHTML(r.Description)
	}
	return r
}

// stripHTML reduces an HTML fragment to its text content, text nodes
// joined by single spaces so adjacent elements never fuse into one
// token. A fragment that fails to parse is returned as-is.
func stripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var parts []string
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
