package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerWritesFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Info("starting", KV("bucket", "b1"), KV("count", 3))

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "starting")
	assert.Contains(t, out, `bucket="b1"`)
	assert.Contains(t, out, `count="3"`)
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.SetLevel(ERROR)
	l.Info("hidden")
	l.Error("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestWithInheritsFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	child := l.With(KV("s3_bucket", "b1"))
	child.Info("processing")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], `s3_bucket="b1"`)
}

func TestKVErrFormatsError(t *testing.T) {
	sd := KVErr(assertErrForLog{})
	assert.Equal(t, "error", sd.Name)
	assert.Equal(t, "boom", sd.Value)
}

type assertErrForLog struct{}

func (assertErrForLog) Error() string { return "boom" }
