// Package queue is the work-queue submission capability LogSource's
// Shard operation consumes, grounded on the sqs_common package.
package queue

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"

	"github.com/gravshift/esloader/internal/errs"
)

// Entry is one shard-dispatch message: an id ("num_<start>") paired
// with its job envelope body.
type Entry struct {
	ID   string
	Body string
}

// WorkQueue is the shard-dispatch sink the core consumes. SendBatch
// must submit all entries (len <= 10) as a single batch and return
// ErrShardDispatchFailed on any non-success response, so a failed
// dispatch propagates to the caller instead of being swallowed.
type WorkQueue interface {
	SendBatch(ctx context.Context, entries []Entry) error
}

// MaxBatchSize is the SQS batch submission limit LogSource.Shard
// chunks shard descriptors into.
const MaxBatchSize = 10

// SQSQueue implements WorkQueue against AWS SQS, grounded on
// sqs_common.SQS's session/service construction.
type SQSQueue struct {
	svc      *sqs.SQS
	queueURL string
}

// NewSQSQueue builds an SQSQueue bound to queueURL in the given
// region.
func NewSQSQueue(region, queueURL string) (*SQSQueue, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, err
	}
	return &SQSQueue{svc: sqs.New(sess), queueURL: queueURL}, nil
}

func (q *SQSQueue) SendBatch(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if len(entries) > MaxBatchSize {
		entries = entries[:MaxBatchSize]
	}
	req := &sqs.SendMessageBatchInput{QueueUrl: aws.String(q.queueURL)}
	for _, e := range entries {
		req.Entries = append(req.Entries, &sqs.SendMessageBatchRequestEntry{
			Id:          aws.String(e.ID),
			MessageBody: aws.String(e.Body),
		})
	}
	out, err := q.svc.SendMessageBatchWithContext(ctx, req)
	if err != nil {
		return errs.ErrShardDispatchFailed
	}
	if len(out.Failed) > 0 {
		return errs.ErrShardDispatchFailed
	}
	return nil
}
