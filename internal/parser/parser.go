// Package parser extracts frontmatter, meta lines, and review flags from note content.
package parser

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/revue/internal/models"
)

const metaPrefix = "meta::"

// Result holds the output of parsing a note.
type Result struct {
	Frontmatter  map[string]interface{}
	Body         string
	Title        string
	Meta         map[string][]string
	Flags        models.Flags
	WatchedSince time.Time
	CadenceLine  string
}

// Parse extracts frontmatter, meta lines, flags, and title from raw note bytes.
func Parse(data []byte) *Result {
	fm, body := splitFrontmatter(data)
	meta, cadence := extractMeta(body)

	res := &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
		Meta:        meta,
		Flags:       flagsFrom(meta),
		CadenceLine: cadence,
	}
	if dates := meta[models.MetaWatch]; len(dates) > 0 {
		res.WatchedSince = parseDate(dates[0])
	}
	return res
}

// Note builds the review engine's view of a note.
func Note(id string, data []byte) models.WatchedNote {
	res := Parse(data)
	return models.WatchedNote{
		ID:           id,
		Title:        res.Title,
		Content:      string(data),
		Flags:        res.Flags,
		WatchedSince: res.WatchedSince,
	}
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the body. If no valid frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// extractMeta collects meta::name[::value] lines. A flag without a value is
// recorded with an empty slice. The raw cadence line is returned separately.
func extractMeta(body string) (map[string][]string, string) {
	meta := make(map[string][]string)
	var cadence string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, metaPrefix) {
			continue
		}
		rest := strings.TrimPrefix(line, metaPrefix)
		name, value, hasValue := strings.Cut(rest, "::")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name == models.MetaReviewCadence {
			if cadence == "" {
				cadence = line
			}
			continue
		}
		vals := meta[name]
		if hasValue && strings.TrimSpace(value) != "" {
			vals = append(vals, strings.TrimSpace(value))
		}
		if vals == nil {
			vals = []string{}
		}
		meta[name] = vals
	}
	return meta, cadence
}

func flagsFrom(meta map[string][]string) models.Flags {
	_, watch := meta[models.MetaWatch]
	_, reminder := meta[models.MetaReminder]
	_, dismissed := meta[models.MetaReminderDismissed]
	_, priority := meta[models.MetaOverduePriority]
	return models.Flags{
		Watch:     watch,
		Reminder:  reminder,
		Dismissed: dismissed,
		Priority:  priority,
	}
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise the first non-meta line.
func deriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	var first string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
		if first == "" && trimmed != "" && !strings.HasPrefix(trimmed, metaPrefix) {
			first = trimmed
		}
	}
	return first
}

func parseDate(v string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// HasMeta reports whether content carries a meta::name line.
func HasMeta(content, name string) bool {
	for _, line := range strings.Split(content, "\n") {
		if isMetaLine(line, name) {
			return true
		}
	}
	return false
}

// StripMeta removes every meta::name line from content.
func StripMeta(content, name string) string {
	lines := strings.Split(content, "\n")
	out := lines[:0]
	for _, l := range lines {
		if !isMetaLine(l, name) {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// AppendLine adds line at the end of content, keeping a trailing newline if
// content had one.
func AppendLine(content, line string) string {
	switch {
	case content == "":
		return line + "\n"
	case strings.HasSuffix(content, "\n"):
		return content + line + "\n"
	default:
		return content + "\n" + line
	}
}

func isMetaLine(line, name string) bool {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), metaPrefix)
	if !ok {
		return false
	}
	n, _, _ := strings.Cut(rest, "::")
	return strings.TrimSpace(n) == name
}
