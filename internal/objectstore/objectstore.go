// Package objectstore is the object-store retrieval capability callers
// inject into the pipeline, grounded on the S3 fetch path in
// ingesters/s3Ingester/bucket.go.
package objectstore

import (
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/gravshift/esloader/internal/errs"
)

// Object is a fetched object's bytes plus its advertised size, since
// container decoding needs both.
type Object struct {
	Body          []byte
	AdvertisedLen int64
}

// Store is the object-store capability the core consumes: fetch by
// bucket/key, already URL-decoded.
type Store interface {
	Fetch(ctx context.Context, bucket, key string) (*Object, error)
}

// DecodeKey undoes the S3-event URL encoding of an object key: '+'
// becomes space, then standard percent-decode.
func DecodeKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "+", " ")
	return url.QueryUnescape(key)
}

// S3Store implements Store against AWS S3, mirroring BucketReader's
// use of s3.GetObject.
type S3Store struct {
	svc *s3.S3
}

// NewS3Store builds an S3Store from an AWS session in the given
// region.
func NewS3Store(region string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, err
	}
	return &S3Store{svc: s3.New(sess)}, nil
}

func (s *S3Store) Fetch(ctx context.Context, bucket, key string) (*Object, error) {
	out, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errs.ErrFetchFailed
	}
	defer out.Body.Close()

	buf := make([]byte, 0, 64*1024)
	tmp := make([]byte, 32*1024)
	for {
		n, rerr := out.Body.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
		}
		if rerr != nil {
			break
		}
	}

	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	} else {
		size = int64(len(buf))
	}
	return &Object{Body: buf, AdvertisedLen: size}, nil
}
