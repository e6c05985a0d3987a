package normalize

import (
	"fmt"
	"time"

	"github.com/gravshift/esloader/internal/errs"
	"github.com/gravshift/esloader/internal/logconfig"
)

// fallbackTimestampLayouts is tried, in order, when a log type names no
// explicit timestamp_format. The set and the round-robin search below
// are grounded on timegrinder's processor list and its
// most-recently-successful-format tracking: real log streams settle on
// one format, so remembering which layout last matched and starting
// the search there again avoids re-trying the whole list on every
// record.
var fallbackTimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	"Jan _2 15:04:05",            // syslog
	"02/Jan/2006:15:04:05 -0700", // apache/nginx access log
	time.ANSIC,
	time.UnixDate,
}

// ResolveTimestamp extracts the configured timestamp key from record
// (auto-materializing cwl_timestamp/cwe_timestamp from meta when
// named), parses it under cfg's format/timezone/precision, and returns
// the instant. When timestamp_key is unset, the instant is "now" (the
// caller supplies `now` so the whole Normalizer pipeline shares one
// clock read). When timestamp_format is also unset, a short list of
// common layouts is tried; layoutHint, if non-nil, remembers which one
// last matched so repeated calls for the same object start there
// instead of scanning from the top every time.
func ResolveTimestamp(record Dict, meta Meta, cfg *logconfig.Config, now time.Time, layoutHint *int) (time.Time, error) {
	if cfg.TimestampKey == "" {
		return now, nil
	}

	materializeMetaTimestamps(record, meta)

	raw, ok := GetPath(record, cfg.TimestampKey)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: key %q not found", errs.ErrBadTimestamp, cfg.TimestampKey)
	}
	s := toFmtString(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: key %q empty", errs.ErrBadTimestamp, cfg.TimestampKey)
	}

	loc := time.FixedZone("", int(cfg.TimestampTZHours*3600))

	var t time.Time
	var err error
	if cfg.TimestampFormat != "" {
		t, err = time.ParseInLocation(cfg.TimestampFormat, s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", errs.ErrBadTimestamp, err)
		}
	} else {
		t, ok = parseWithFallbackLayouts(s, loc, layoutHint)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: no layout matched %q", errs.ErrBadTimestamp, s)
		}
	}

	if !cfg.TimestampNano {
		t = t.Truncate(time.Second)
	}
	return t, nil
}

// parseWithFallbackLayouts tries fallbackTimestampLayouts in round-robin
// order starting at *layoutHint, the way TimeGrinder.Extract walks its
// processor list starting at tg.curr. A nil hint just starts at 0 and
// discards the result.
func parseWithFallbackLayouts(s string, loc *time.Location, layoutHint *int) (time.Time, bool) {
	var local int
	if layoutHint == nil {
		layoutHint = &local
	}
	n := len(fallbackTimestampLayouts)
	start := *layoutHint % n
	if start < 0 {
		start = 0
	}
	for c := 0; c < n; c++ {
		i := (start + c) % n
		if t, err := time.ParseInLocation(fallbackTimestampLayouts[i], s, loc); err == nil {
			*layoutHint = i
			return t, true
		}
	}
	*layoutHint = 0
	return time.Time{}, false
}

func materializeMetaTimestamps(record Dict, meta Meta) {
	if _, exists := record["cwl_timestamp"]; !exists && meta.CWLTimestamp != 0 {
		record["cwl_timestamp"] = time.UnixMilli(meta.CWLTimestamp).UTC().Format(time.RFC3339Nano)
	}
	if _, exists := record["cwe_timestamp"]; !exists && meta.CWETimestamp != "" {
		record["cwe_timestamp"] = meta.CWETimestamp
	}
}
