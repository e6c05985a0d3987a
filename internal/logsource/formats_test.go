package logsource

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravshift/esloader/internal/logconfig"
)

func TestTextReaderSkipsHeader(t *testing.T) {
	r := newTextReader("h1\nh2\nbody1\nbody2\n", 2)
	assert.Equal(t, 2, r.Count())
	recs := r.Iterate(1, 2)
	require.Len(t, recs, 2)
	assert.Equal(t, "body1", recs[0].Text)
	assert.Equal(t, "body2", recs[1].Text)
}

func TestCSVReaderWhitespaceSplit(t *testing.T) {
	r := newCSVReader("time host msg\n2024-01-01T00:00:00Z h1 hello\n")
	assert.Equal(t, 1, r.Count())
	recs := r.Iterate(1, 1)
	require.Len(t, recs, 1)
	d := recs[0].Parsed
	assert.Equal(t, "2024-01-01T00:00:00Z", d["time"])
	assert.Equal(t, "h1", d["host"])
	assert.Equal(t, "hello", d["msg"])
}

func TestJSONReaderNDJSON(t *testing.T) {
	r := newJSONReader("{\"a\":1}\n{\"a\":2}\n", "")
	assert.Equal(t, 2, r.Count())
}

func TestJSONReaderEnvelopeArray(t *testing.T) {
	r := newJSONReader(`{"records":[{"a":1},{"a":2},{"a":3}]}`+"\n", "records")
	assert.Equal(t, 3, r.Count())
	recs := r.Iterate(1, 3)
	assert.Equal(t, float64(1), recs[0].Parsed["a"])
}

func TestJSONReaderConcatenatedJSON(t *testing.T) {
	r := newJSONReader(`{"a":1} {"a":2}`+"\n", "")
	assert.Equal(t, 2, r.Count())
}

func TestBoundaryReaderMultiline(t *testing.T) {
	re := regexp.MustCompile(`^\d{4}-`)
	r := newBoundaryReader("2024-01-01 A\ncont\n2024-01-02 B\n", re)
	assert.Equal(t, 2, r.Count())
	recs := r.Iterate(1, 2)
	assert.Equal(t, "2024-01-01 A\ncont", recs[0].Text)
	assert.Equal(t, "2024-01-02 B", recs[1].Text)
}

func TestNewFormatReaderDispatch(t *testing.T) {
	cfg := &logconfig.Config{FileFormat: logconfig.FormatText, TextHeaderLineNumber: 0}
	fr, err := NewFormatReader(cfg, "a\nb\n")
	require.NoError(t, err)
	assert.Equal(t, 2, fr.Count())
}
