package logsource

import (
	"bufio"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gravshift/esloader/internal/logconfig"
	"github.com/gravshift/esloader/internal/normalize"
)

// FormatReader counts and iterates records against an already-decoded
// text stream, one implementation per file format. start/end are
// 1-based inclusive.
type FormatReader interface {
	Count() int
	Iterate(start, end int) []normalize.Payload
}

// NewFormatReader builds the FormatReader for cfg.FileFormat against
// decoded text.
func NewFormatReader(cfg *logconfig.Config, text string) (FormatReader, error) {
	switch cfg.FileFormat {
	case logconfig.FormatText:
		return newTextReader(text, cfg.TextHeaderLineNumber), nil
	case logconfig.FormatCSV:
		return newCSVReader(text), nil
	case logconfig.FormatJSON:
		return newJSONReader(text, cfg.JSONDelimiter), nil
	case logconfig.FormatMultiline, logconfig.FormatXML:
		return newBoundaryReader(text, cfg.MultilineFirstline), nil
	case logconfig.FormatWinEvtXML:
		return newBoundaryReader(text, cfg.MultilineFirstline), nil
	default:
		return newTextReader(text, 0), nil
	}
}

func splitLines(text string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

// --- text ---

type textReader struct {
	lines  []string
	header int
}

func newTextReader(text string, header int) *textReader {
	lines := splitLines(text)
	if header > len(lines) {
		header = len(lines)
	}
	return &textReader{lines: lines[header:], header: header}
}

func (r *textReader) Count() int { return len(r.lines) }

func (r *textReader) Iterate(start, end int) []normalize.Payload {
	out := make([]normalize.Payload, 0, end-start+1)
	for i := start; i <= end && i >= 1 && i <= len(r.lines); i++ {
		out = append(out, normalize.Payload{Text: strings.TrimRight(r.lines[i-1], " \t\r\n")})
	}
	return out
}

// --- csv ---
// Fields are whitespace-split for both header and rows, matching the
// source system's deliberate (non-comma) CSV behavior.

type csvReader struct {
	header []string
	rows   []string
}

func newCSVReader(text string) *csvReader {
	lines := splitLines(text)
	r := &csvReader{}
	if len(lines) == 0 {
		return r
	}
	r.header = strings.Fields(lines[0])
	r.rows = lines[1:]
	return r
}

func (r *csvReader) Count() int { return len(r.rows) }

func (r *csvReader) Iterate(start, end int) []normalize.Payload {
	out := make([]normalize.Payload, 0, end-start+1)
	for i := start; i <= end && i >= 1 && i <= len(r.rows); i++ {
		fields := strings.Fields(r.rows[i-1])
		d := normalize.Dict{}
		for j, h := range r.header {
			if j >= len(fields) {
				break
			}
			key := strings.ReplaceAll(h, "-", "_")
			d[key] = fields[j]
		}
		out = append(out, normalize.Payload{Parsed: d})
	}
	return out
}

// --- json ---

type jsonReader struct {
	records []normalize.Payload
}

func newJSONReader(text string, delimiter string) *jsonReader {
	r := &jsonReader{}
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.records = append(r.records, decodeJSONLine(line, delimiter)...)
	}
	return r
}

// decodeJSONLine handles the three json-format shapes a line can take:
// NDJSON, concatenated-JSON, then (per decoded value) envelope-array
// flattening when configured.
func decodeJSONLine(line string, delimiter string) []normalize.Payload {
	dec := json.NewDecoder(strings.NewReader(line))
	var values []interface{}
	for {
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			break
		}
		values = append(values, v)
	}
	var out []normalize.Payload
	for _, v := range values {
		out = append(out, flattenJSONValue(v, delimiter)...)
	}
	return out
}

func flattenJSONValue(v interface{}, delimiter string) []normalize.Payload {
	m, ok := v.(map[string]interface{})
	if ok && delimiter != "" {
		if arr, ok := m[delimiter].([]interface{}); ok {
			out := make([]normalize.Payload, 0, len(arr))
			for _, elem := range arr {
				out = append(out, toPayload(elem))
			}
			return out
		}
	}
	return []normalize.Payload{toPayload(v)}
}

func toPayload(v interface{}) normalize.Payload {
	if m, ok := v.(map[string]interface{}); ok {
		return normalize.Payload{Parsed: normalize.Dict(m)}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return normalize.Payload{Text: fmt.Sprintf("%v", v)}
	}
	return normalize.Payload{Text: string(b)}
}

func (r *jsonReader) Count() int { return len(r.records) }

func (r *jsonReader) Iterate(start, end int) []normalize.Payload {
	out := make([]normalize.Payload, 0, end-start+1)
	for i := start; i <= end && i >= 1 && i <= len(r.records); i++ {
		out = append(out, r.records[i-1])
	}
	return out
}

// --- multiline / xml / winevtxml ---

type boundaryReader struct {
	records []string
}

func newBoundaryReader(text string, firstLine *regexp.Regexp) *boundaryReader {
	r := &boundaryReader{}
	if firstLine == nil {
		return r
	}
	var cur []string
	started := false
	flush := func() {
		if started {
			r.records = append(r.records, strings.Join(cur, "\n"))
		}
		cur = nil
	}
	for _, line := range splitLines(text) {
		if firstLine.MatchString(line) {
			flush()
			started = true
		}
		if !started {
			continue // leading lines before the first match are not a record
		}
		cur = append(cur, line)
	}
	flush()
	return r
}

func (r *boundaryReader) Count() int { return len(r.records) }

func (r *boundaryReader) Iterate(start, end int) []normalize.Payload {
	out := make([]normalize.Payload, 0, end-start+1)
	for i := start; i <= end && i >= 1 && i <= len(r.records); i++ {
		out = append(out, normalize.Payload{Text: r.records[i-1]})
	}
	return out
}
