package logsource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gravshift/esloader/internal/errs"
	"github.com/gravshift/esloader/internal/logconfig"
	"github.com/gravshift/esloader/internal/normalize"
	"github.com/gravshift/esloader/internal/objectstore"
	"github.com/gravshift/esloader/internal/queue"
)

// ShardRange is the optional start_number/end_number carried on a
// shard-continuation job envelope.
type ShardRange struct {
	Start int // 1-based inclusive
	End   int // 1-based inclusive
}

// Job mirrors the input job envelope's shape for (de)serializing shard
// continuation messages.
type Job struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	LogType     string `json:"logtype"`
	StartNumber int    `json:"start_number,omitempty"`
	EndNumber   int    `json:"end_number,omitempty"`
}

// Inspection is the result of Inspect.
type Inspection struct {
	IsIgnored     bool
	IgnoredReason string
	LogCount      int
	Format        logconfig.FileFormat
}

// LogSource decodes an object into records, computes shard
// descriptors, and enqueues continuations. One instance lives per
// object.
type LogSource struct {
	Bucket  string
	Key     string
	LogType string
	Config  *logconfig.Config
	Queue   queue.WorkQueue
	// ShardRange is set when this LogSource represents a shard
	// continuation job rather than a freshly fetched object.
	ShardRange *ShardRange

	reader        *recordStream
	ignoredReason string
	logCount      int
}

// New builds a LogSource from a fetched object, decoding its container
// and building the configured FormatReader. Ignore rules that can be
// decided before counting are checked here.
func New(bucket, key, logtype string, cfg *logconfig.Config, obj *objectstore.Object, q queue.WorkQueue, shard *ShardRange) (*LogSource, error) {
	ls := &LogSource{Bucket: bucket, Key: key, LogType: logtype, Config: cfg, Queue: q, ShardRange: shard}

	if strings.HasSuffix(key, "/") {
		ls.ignoredReason = "key ends with /"
		return ls, nil
	}
	if strings.Contains(logtype, "unknown") {
		ls.ignoredReason = "unknown logtype"
		return ls, nil
	}
	if cfg.S3KeyIgnored != nil && cfg.S3KeyIgnored.MatchString(key) {
		ls.ignoredReason = "s3_key_ignored matched"
		return ls, nil
	}
	if cfg.S3KeyIgnoredGlob != nil && cfg.S3KeyIgnoredGlob.Match(key) {
		ls.ignoredReason = "s3_key_ignored_glob matched"
		return ls, nil
	}

	text, ignored, err := Decode(obj.Body, obj.AdvertisedLen)
	if err != nil {
		return nil, err
	}
	if ignored != "" {
		ls.ignoredReason = ignored
		return ls, nil
	}

	records, err := buildRecordStream(cfg, text)
	if err != nil {
		return nil, err
	}
	ls.reader = records
	ls.logCount = records.Count()
	if ls.logCount == 0 {
		ls.ignoredReason = "log_count is 0"
	}
	return ls, nil
}

// recordStream adapts a FormatReader plus any envelope-stripping into
// a uniform, already-enveloped 1-based-inclusive record sequence, so
// LogSource's window math stays the same regardless of via_cwl /
// via_firelens.
type recordStream struct {
	records []normalize.Record
}

func (r *recordStream) Count() int { return len(r.records) }

func (r *recordStream) Iterate(start, end int) []normalize.Record {
	out := make([]normalize.Record, 0, end-start+1)
	for i := start; i <= end && i >= 1 && i <= len(r.records); i++ {
		out = append(out, r.records[i-1])
	}
	return out
}

func buildRecordStream(cfg *logconfig.Config, text string) (*recordStream, error) {
	if cfg.ViaFirelens {
		lines := splitLines(text)
		return &recordStream{records: StripFireLens(lines, cfg)}, nil
	}

	fr, err := NewFormatReader(cfg, text)
	if err != nil {
		return nil, err
	}
	payloads := fr.Iterate(1, fr.Count())

	var recs []normalize.Record
	if cfg.ViaCWL {
		recs = StripCWL(payloads)
	} else {
		recs = make([]normalize.Record, len(payloads))
		for i, p := range payloads {
			recs[i] = normalize.Record{Payload: p}
		}
	}
	for i := range recs {
		recs[i] = StripCWE(recs[i])
	}
	return &recordStream{records: recs}, nil
}

// Inspect reports whether the object was ignored and, if not, its
// detected record count and format.
func (ls *LogSource) Inspect() Inspection {
	return Inspection{
		IsIgnored:     ls.ignoredReason != "",
		IgnoredReason: ls.ignoredReason,
		LogCount:      ls.logCount,
		Format:        ls.Config.FileFormat,
	}
}

// window computes the half-open [s,e) 0-based record window to read.
// Header lines (text_header_line_number, the CSV header row) are
// already excluded by the FormatReader itself before logCount is
// measured, so the window here always starts at 0 rather than skipping
// header lines a second time.
func (ls *LogSource) window() (int, int) {
	maxCount := ls.Config.EffectiveMaxLogCount()
	if ls.ShardRange != nil {
		return ls.ShardRange.Start - 1, ls.ShardRange.End
	}
	end := ls.logCount
	if end > maxCount {
		end = maxCount
	}
	return 0, end
}

// Records yields the selected window, converting the half-open
// 0-based window into the reader's 1-based inclusive Iterate call.
func (ls *LogSource) Records() []normalize.Record {
	if ls.ignoredReason != "" || ls.reader == nil {
		return nil
	}
	s, e := ls.window()
	return ls.reader.Iterate(s+1, e)
}

// Shard splits oversized objects into continuation jobs: when
// log_count exceeds max_log_count, it partitions [1..log_count] into contiguous
// max_log_count-sized ranges, submits job descriptors in batches of
// up to queue.MaxBatchSize, and marks the current invocation ignored
// on success.
func (ls *LogSource) Shard(ctx context.Context) (bool, error) {
	if ls.ShardRange != nil {
		return false, nil // already a shard continuation, never re-shards
	}
	maxCount := ls.Config.EffectiveMaxLogCount()
	if ls.logCount <= maxCount {
		return false, nil
	}
	if ls.Queue == nil {
		// No dispatch queue configured: fall back to direct, capped
		// processing instead of panicking on a nil WorkQueue.
		return false, nil
	}

	var entries []queue.Entry
	numShards := 0
	for start := 1; start <= ls.logCount; start += maxCount {
		end := start + maxCount - 1
		if end > ls.logCount {
			end = ls.logCount
		}
		numShards++
		job := Job{Bucket: ls.Bucket, Key: ls.Key, LogType: ls.LogType, StartNumber: start, EndNumber: end}
		body, err := json.Marshal(job)
		if err != nil {
			return false, fmt.Errorf("%w: %v", errs.ErrShardDispatchFailed, err)
		}
		entries = append(entries, queue.Entry{ID: fmt.Sprintf("num_%d", start), Body: string(body)})
	}

	for i := 0; i < len(entries); i += queue.MaxBatchSize {
		j := i + queue.MaxBatchSize
		if j > len(entries) {
			j = len(entries)
		}
		if err := ls.Queue.SendBatch(ctx, entries[i:j]); err != nil {
			return false, err
		}
	}

	ls.ignoredReason = fmt.Sprintf("Log file was split into %d pieces and sent to SQS.", numShards)
	ls.reader = nil
	return true, nil
}
