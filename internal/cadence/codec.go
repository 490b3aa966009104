package cadence

import (
	"sort"
	"strconv"
	"strings"
)

// LinePrefix marks the cadence line inside note content.
const LinePrefix = "meta::review_cadence::"

// Parse decodes the first cadence line in content. It returns false when the
// note has no cadence line or the line names no known type; callers then use
// Default (see FromContent).
func Parse(content string) (Spec, bool) {
	raw, ok := findLine(content)
	if !ok {
		return Spec{}, false
	}
	spec := Decode(raw)
	if !spec.Type.Valid() {
		return Spec{}, false
	}
	return spec, true
}

// FromContent returns the note's cadence, or Default when it has none.
func FromContent(content string) Spec {
	if spec, ok := Parse(content); ok {
		return spec
	}
	return Default()
}

// Decode parses the key=value list following LinePrefix. Numeric fields that
// do not parse become 0; unknown keys are kept in Extra.
func Decode(raw string) Spec {
	var spec Spec
	for _, pair := range strings.Split(strings.TrimSpace(raw), ";") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "type":
			spec.Type = Type(value)
		case "hours":
			spec.Hours = atoi(value)
		case "minutes":
			spec.Minutes = atoi(value)
		case "time":
			spec.Time = value
		case "days":
			spec.Days = parseDays(value)
		case "day":
			spec.Day = atoi(value)
		case "month":
			spec.Month = atoi(value)
		case "start":
			spec.Start = value
		case "end":
			spec.End = value
		case "":
		default:
			if spec.Extra == nil {
				spec.Extra = make(map[string]string)
			}
			spec.Extra[key] = value
		}
	}
	return spec
}

// Encode renders spec as the key=value list stored after LinePrefix.
func Encode(spec Spec) string {
	parts := []string{
		"type=" + string(spec.Type),
		"hours=" + strconv.Itoa(spec.Hours),
		"minutes=" + strconv.Itoa(spec.Minutes),
	}
	if spec.Time != "" {
		parts = append(parts, "time="+spec.Time)
	}
	if len(spec.Days) > 0 {
		days := make([]string, len(spec.Days))
		for i, d := range spec.Days {
			days[i] = strconv.Itoa(d)
		}
		parts = append(parts, "days="+strings.Join(days, ","))
	}
	if spec.Day != 0 {
		parts = append(parts, "day="+strconv.Itoa(spec.Day))
	}
	if spec.Month != 0 {
		parts = append(parts, "month="+strconv.Itoa(spec.Month))
	}
	if spec.Start != "" {
		parts = append(parts, "start="+spec.Start)
	}
	if spec.End != "" {
		parts = append(parts, "end="+spec.End)
	}
	if len(spec.Extra) > 0 {
		keys := make([]string, 0, len(spec.Extra))
		for k := range spec.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+"="+spec.Extra[k])
		}
	}
	return strings.Join(parts, ";")
}

// Line returns the full meta line for spec.
func Line(spec Spec) string {
	return LinePrefix + Encode(spec)
}

// SetLine replaces the cadence line in content, or appends one when the note
// has none. All other lines keep their position and bytes.
func SetLine(content string, spec Spec) string {
	line := Line(spec)
	if content == "" {
		return line
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		if isCadenceLine(l) {
			lines[i] = line
			return strings.Join(lines, "\n")
		}
	}
	if strings.HasSuffix(content, "\n") {
		return content + line + "\n"
	}
	return content + "\n" + line
}

// StripLine removes every cadence line from content.
func StripLine(content string) string {
	lines := strings.Split(content, "\n")
	out := lines[:0]
	for _, l := range lines {
		if !isCadenceLine(l) {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func findLine(content string) (string, bool) {
	for _, l := range strings.Split(content, "\n") {
		if isCadenceLine(l) {
			return strings.TrimPrefix(strings.TrimSpace(l), LinePrefix), true
		}
	}
	return "", false
}

func isCadenceLine(l string) bool {
	return strings.HasPrefix(strings.TrimSpace(l), LinePrefix)
}

func parseDays(v string) []int {
	var out []int
	for _, f := range strings.Split(v, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || d < 0 || d > 6 {
			continue
		}
		out = append(out, d)
	}
	return out
}

func atoi(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
