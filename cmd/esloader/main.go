// Command esloader is the Lambda entrypoint invoked once per S3
// object-created notification (directly, or relayed through the SQS
// shard-continuation queue), plus a local-run harness for manual/CI
// invocation without a Lambda runtime.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"github.com/gravshift/esloader/internal/geo"
	"github.com/gravshift/esloader/internal/log"
	"github.com/gravshift/esloader/internal/logconfig"
	"github.com/gravshift/esloader/internal/logsource"
	"github.com/gravshift/esloader/internal/normalize"
	"github.com/gravshift/esloader/internal/objectstore"
	"github.com/gravshift/esloader/internal/queue"
	"github.com/gravshift/esloader/internal/svcconfig"
	"github.com/gravshift/esloader/internal/transform"
)

// App bundles the injected capabilities the core consumes, built once
// per cold start and reused across invocations, matching the
// teacher's habit of constructing long-lived clients outside the
// per-event handler.
type App struct {
	Logger  *log.Logger
	Configs map[string]*logconfig.Config
	Store   objectstore.Store
	Queue   queue.WorkQueue
	Geo     geo.Lookup
}

func main() {
	local := flag.Bool("local", false, "run the local harness instead of the Lambda runtime")
	bucket := flag.String("bucket", "", "S3 bucket (local mode)")
	key := flag.String("key", "", "S3 key (local mode)")
	logtype := flag.String("logtype", "", "log type (local mode)")
	configPath := flag.String("config", "", "path to a logconfig JSON set (local mode)")
	overlay := flag.String("overlay", "", "path to a TOML service-config overlay (local mode)")
	flag.Parse()

	logger := log.NewStdout()

	svc, err := svcconfig.FromEnv()
	if err != nil && !*local {
		logger.Critical("service config invalid", log.KVErr(err))
		os.Exit(1)
	}
	if svc == nil {
		svc = &svcconfig.Config{Region: "us-east-1", MaxBatchSize: 10}
	}
	if *overlay != "" {
		if err := svc.ApplyOverlay(*overlay); err != nil {
			logger.Critical("overlay config invalid", log.KVErr(err))
			os.Exit(1)
		}
	}

	var configs map[string]*logconfig.Config
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			logger.Critical("reading logconfig set failed", log.KVErr(err))
			os.Exit(1)
		}
		configs, err = logconfig.LoadSet(raw)
		if err != nil {
			logger.Critical("parsing logconfig set failed", log.KVErr(err))
			os.Exit(1)
		}
	}

	app := &App{Logger: logger, Configs: configs}

	if *local {
		if err := app.runLocal(*bucket, *key, *logtype); err != nil {
			logger.Error("local run failed", log.KVErr(err))
			os.Exit(1)
		}
		return
	}

	store, err := objectstore.NewS3Store(svc.Region)
	if err != nil {
		logger.Critical("s3 client init failed", log.KVErr(err))
		os.Exit(1)
	}
	app.Store = store

	if svc.QueueURL != "" {
		q, err := queue.NewSQSQueue(svc.Region, svc.QueueURL)
		if err != nil {
			logger.Critical("sqs client init failed", log.KVErr(err))
			os.Exit(1)
		}
		app.Queue = q
	}

	if svc.GeoCityDBPath != "" || svc.GeoASNDBPath != "" {
		g, err := geo.Open(svc.GeoCityDBPath, svc.GeoASNDBPath)
		if err != nil {
			logger.Error("geoip db open failed, enrichment disabled", log.KVErr(err))
		} else {
			app.Geo = g
		}
	}

	lambda.Start(app.handleEvent)
}

// handleEvent takes the raw invocation payload and dispatches it: if it
// decodes as an S3Event whose first record has EventSource "aws:s3" it
// goes to handleS3Event; otherwise, if it decodes as an SQSEvent, its
// messages are treated as shard-continuation job envelopes.
func (a *App) handleEvent(ctx context.Context, raw json.RawMessage) error {
	var probe struct {
		Records []json.RawMessage `json:"Records"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("decode event envelope: %w", err)
	}

	var s3evt events.S3Event
	if err := json.Unmarshal(raw, &s3evt); err == nil && len(s3evt.Records) > 0 && s3evt.Records[0].EventSource == "aws:s3" {
		return a.handleS3Event(ctx, s3evt)
	}

	var sqsEvt events.SQSEvent
	if err := json.Unmarshal(raw, &sqsEvt); err == nil {
		return a.handleSQSEvent(ctx, sqsEvt)
	}

	return fmt.Errorf("unrecognized event shape")
}

func (a *App) handleS3Event(ctx context.Context, evt events.S3Event) error {
	for _, rec := range evt.Records {
		job := logsource.Job{
			Bucket: rec.S3.Bucket.Name,
			Key:    rec.S3.Object.Key,
		}
		if err := a.processJob(ctx, job, nil); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) handleSQSEvent(ctx context.Context, evt events.SQSEvent) error {
	for _, msg := range evt.Records {
		var job logsource.Job
		if err := json.Unmarshal([]byte(msg.Body), &job); err != nil {
			return fmt.Errorf("decode shard job: %w", err)
		}
		var shard *logsource.ShardRange
		if job.StartNumber > 0 {
			shard = &logsource.ShardRange{Start: job.StartNumber, End: job.EndNumber}
		}
		if err := a.processJob(ctx, job, shard); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) processJob(ctx context.Context, job logsource.Job, shard *logsource.ShardRange) error {
	runID := uuid.NewString()
	key, err := objectstore.DecodeKey(job.Key)
	if err != nil {
		return fmt.Errorf("decode key: %w", err)
	}
	logger := a.Logger.With(
		log.KV("run_id", runID),
		log.KV("s3_bucket", job.Bucket),
		log.KV("s3_key", key),
		log.KV("logtype", job.LogType),
	)
	logger.Info("starting object processing")
	start := time.Now()

	cfg, ok := a.Configs[job.LogType]
	if !ok {
		logger.Warn("no logconfig for logtype, skipping")
		return nil
	}

	obj, err := a.Store.Fetch(ctx, job.Bucket, key)
	if err != nil {
		logger.Error("fetch failed", log.KVErr(err))
		return err
	}

	ls, err := logsource.New(job.Bucket, key, job.LogType, cfg, obj, a.Queue, shard)
	if err != nil {
		logger.Error("logsource init failed", log.KVErr(err))
		return err
	}

	if shard == nil {
		didShard, err := ls.Shard(ctx)
		if err != nil {
			logger.Error("shard dispatch failed", log.KVErr(err))
			return err
		}
		if didShard {
			logger.Info("object sharded", log.KV("reason", ls.Inspect().IgnoredReason))
			return nil
		}
	}

	insp := ls.Inspect()
	if insp.IsIgnored {
		logger.Info("object ignored", log.KV("reason", insp.IgnoredReason))
		return nil
	}

	norm := &normalize.Normalizer{
		Config:     cfg,
		Transform:  transform.Identity,
		Geo:        a.Geo,
		Bucket:     job.Bucket,
		Key:        key,
		LogType:    job.LogType,
		KeyAccount: logconfig.ExtractAccountFromKey(key),
		KeyRegion:  logconfig.ExtractRegionFromKey(key),
	}

	now := time.Now()
	emitted := 0
	for _, rec := range ls.Records() {
		res, err := norm.Normalize(rec, now)
		if err != nil {
			logger.Error("record normalization failed", log.KVErr(err))
			return err
		}
		if res.Ignored {
			continue
		}
		emitted++
		_ = res // indexing/emission sink is an external collaborator
	}

	logger.Info("finished object processing",
		log.KV("records_emitted", emitted),
		log.KV("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// runLocal exercises processJob against a single bucket/key/logtype
// without a Lambda runtime, for manual and CI invocation.
func (a *App) runLocal(bucket, key, logtype string) error {
	if bucket == "" || key == "" || logtype == "" {
		return fmt.Errorf("local mode requires -bucket, -key, and -logtype")
	}
	store, err := objectstore.NewS3Store("us-east-1")
	if err != nil {
		return err
	}
	a.Store = store
	return a.processJob(context.Background(), logsource.Job{Bucket: bucket, Key: key, LogType: logtype}, nil)
}
