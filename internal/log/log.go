// Package log implements the structured, leveled logging used throughout
// esloader. Key/value pairs are carried as rfc5424.SDParam values and
// written after the message as plain name="value" pairs, not as
// bracketed RFC5424 structured-data elements. There is no syslog relay
// or log-file rotation machinery here:
// a single-invocation Lambda handler always logs to stdout for
// CloudWatch Logs to capture.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/crewjam/rfc5424"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	CRITICAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case CRITICAL:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// KV builds an rfc5424 structured-data param from a name/value pair.
// Non-string values are formatted with %v, matching ingest/log.KV.
func KV(name string, value interface{}) rfc5424.SDParam {
	switch v := value.(type) {
	case string:
		return rfc5424.SDParam{Name: name, Value: v}
	default:
		return rfc5424.SDParam{Name: name, Value: fmt.Sprintf("%v", v)}
	}
}

// KVErr attaches an error under the conventional "error" field name.
func KVErr(err error) rfc5424.SDParam {
	if err == nil {
		return KV("error", "")
	}
	return KV("error", err.Error())
}

// Logger is a leveled, structured logger writing RFC5424-ish lines to
// a single writer (stdout by default).
type Logger struct {
	mtx  sync.Mutex
	wtr  io.Writer
	lvl  Level
	base []rfc5424.SDParam
}

// New returns a Logger writing to wtr at level INFO.
func New(wtr io.Writer) *Logger {
	return &Logger{wtr: wtr, lvl: INFO}
}

// NewStdout returns a Logger writing to os.Stdout, the default sink for
// a Lambda invocation since CloudWatch Logs captures stdout/stderr.
func NewStdout() *Logger {
	return New(os.Stdout)
}

// SetLevel adjusts the minimum level that is emitted.
func (l *Logger) SetLevel(lvl Level) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.lvl = lvl
}

// With returns a child logger that always carries the given fields in
// addition to any passed per-call, used to stamp every log line for an
// invocation with its bucket/key/logtype provenance.
func (l *Logger) With(sds ...rfc5424.SDParam) *Logger {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	child := &Logger{
		wtr:  l.wtr,
		lvl:  l.lvl,
		base: append(append([]rfc5424.SDParam(nil), l.base...), sds...),
	}
	return child
}

func (l *Logger) output(lvl Level, msg string, sds []rfc5424.SDParam) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if lvl < l.lvl {
		return
	}
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	fmt.Fprintf(l.wtr, "%s [%s] %s", ts, lvl, msg)
	all := append(append([]rfc5424.SDParam(nil), l.base...), sds...)
	for _, sd := range all {
		fmt.Fprintf(l.wtr, " %s=%q", sd.Name, sd.Value)
	}
	fmt.Fprintln(l.wtr)
}

func (l *Logger) Debug(msg string, sds ...rfc5424.SDParam)    { l.output(DEBUG, msg, sds) }
func (l *Logger) Info(msg string, sds ...rfc5424.SDParam)     { l.output(INFO, msg, sds) }
func (l *Logger) Warn(msg string, sds ...rfc5424.SDParam)     { l.output(WARN, msg, sds) }
func (l *Logger) Error(msg string, sds ...rfc5424.SDParam)    { l.output(ERROR, msg, sds) }
func (l *Logger) Critical(msg string, sds ...rfc5424.SDParam) { l.output(CRITICAL, msg, sds) }

// Discard returns a Logger that drops everything, used in tests.
func Discard() *Logger {
	return New(io.Discard)
}
