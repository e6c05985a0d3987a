package logsource

import (
	"context"
	"errors"
	"testing"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravshift/esloader/internal/logconfig"
	"github.com/gravshift/esloader/internal/objectstore"
	"github.com/gravshift/esloader/internal/queue"
)

type fakeQueue struct {
	batches [][]queue.Entry
	failAt  int
}

func (f *fakeQueue) SendBatch(ctx context.Context, entries []queue.Entry) error {
	f.batches = append(f.batches, entries)
	if f.failAt > 0 && len(f.batches) == f.failAt {
		return errors.New("simulated queue failure")
	}
	return nil
}

func csvObject(body string) *objectstore.Object {
	return &objectstore.Object{Body: []byte(body), AdvertisedLen: int64(len(body))}
}

func TestLogSourceCSVScenario(t *testing.T) {
	cfg := &logconfig.Config{
		FileFormat:           logconfig.FormatCSV,
		TextHeaderLineNumber: 1,
		MaxLogCount:          10,
	}
	obj := csvObject("time host msg\n2024-01-01T00:00:00Z h1 hello\n")
	ls, err := New("bucket", "key.csv", "typeA", cfg, obj, nil, nil)
	require.NoError(t, err)

	insp := ls.Inspect()
	assert.False(t, insp.IsIgnored)
	assert.Equal(t, 1, insp.LogCount)

	recs := ls.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "h1", recs[0].Payload.Parsed["host"])
}

func TestLogSourceIgnoresTrailingSlashKey(t *testing.T) {
	cfg := &logconfig.Config{FileFormat: logconfig.FormatText}
	obj := csvObject("irrelevant body text of sufficient length")
	ls, err := New("bucket", "prefix/", "typeA", cfg, obj, nil, nil)
	require.NoError(t, err)
	assert.True(t, ls.Inspect().IsIgnored)
}

func TestLogSourceIgnoresGlobMatchedKey(t *testing.T) {
	g, err := glob.Compile("tmp/*.bak")
	require.NoError(t, err)
	cfg := &logconfig.Config{FileFormat: logconfig.FormatText, S3KeyIgnoredGlob: g}
	obj := csvObject("irrelevant body text of sufficient length")
	ls, err := New("bucket", "tmp/file.bak", "typeA", cfg, obj, nil, nil)
	require.NoError(t, err)
	insp := ls.Inspect()
	assert.True(t, insp.IsIgnored)
	assert.Equal(t, "s3_key_ignored_glob matched", insp.IgnoredReason)
}

func TestLogSourceShardingSplitsIntoBatches(t *testing.T) {
	cfg := &logconfig.Config{FileFormat: logconfig.FormatText, MaxLogCount: 10}
	var lines string
	for i := 0; i < 25; i++ {
		lines += "line\n"
	}
	obj := csvObject(lines)
	q := &fakeQueue{}
	ls, err := New("bucket", "key", "typeA", cfg, obj, q, nil)
	require.NoError(t, err)
	require.Equal(t, 25, ls.Inspect().LogCount)

	did, err := ls.Shard(context.Background())
	require.NoError(t, err)
	assert.True(t, did)
	assert.True(t, ls.Inspect().IsIgnored)

	total := 0
	for _, b := range q.batches {
		total += len(b)
	}
	assert.Equal(t, 3, total)
}

func TestLogSourceShardFallsBackWhenQueueNil(t *testing.T) {
	cfg := &logconfig.Config{FileFormat: logconfig.FormatText, MaxLogCount: 10}
	var lines string
	for i := 0; i < 25; i++ {
		lines += "line\n"
	}
	obj := csvObject(lines)
	ls, err := New("bucket", "key", "typeA", cfg, obj, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 25, ls.Inspect().LogCount)

	did, err := ls.Shard(context.Background())
	require.NoError(t, err)
	assert.False(t, did)
	assert.False(t, ls.Inspect().IsIgnored)

	recs := ls.Records()
	assert.Len(t, recs, 10)
}

func TestLogSourceNoShardWhenWithinLimit(t *testing.T) {
	cfg := &logconfig.Config{FileFormat: logconfig.FormatText, MaxLogCount: 10}
	obj := csvObject("one\ntwo\n")
	ls, err := New("bucket", "key", "typeA", cfg, obj, &fakeQueue{}, nil)
	require.NoError(t, err)
	did, err := ls.Shard(context.Background())
	require.NoError(t, err)
	assert.False(t, did)
}
