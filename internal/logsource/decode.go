// Package logsource implements the format-aware reader half of the
// pipeline: container decoding, per-format record readers, envelope
// stripping, and the LogSource orchestrator that ties them together
// and computes shard descriptors. Grounded on ingesters/s3Ingester
// (bucket.go, sqss3.go) and the processors package's gzip handling.
package logsource

import (
	"bytes"
	"compress/bzip2"
	"archive/zip"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/gravshift/esloader/internal/errs"
)

// minValidSize is the advertised-size floor below which an object is
// ignored outright as having no valid contents.
const minValidSize = 20

// Container enumerates the detected encoding of an object's bytes.
type Container int

const (
	ContainerUnknown Container = iota
	ContainerPlain
	ContainerGzip
	ContainerBzip2
	ContainerZip
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	zipMagic   = []byte{0x50, 0x4b, 0x03, 0x04}
	bzip2Magic = []byte{0x42, 0x5a, 0x68} // "BZh"
)

// Detect classifies raw by its first bytes.
func Detect(raw []byte) Container {
	if bytes.HasPrefix(raw, gzipMagic) {
		return ContainerGzip
	}
	if bytes.HasPrefix(raw, zipMagic) {
		return ContainerZip
	}
	if bytes.HasPrefix(raw, bzip2Magic) {
		return ContainerBzip2
	}
	if isProbablyText(raw) {
		return ContainerPlain
	}
	return ContainerUnknown
}

// isProbablyText is a permissive heuristic: no NUL bytes in the
// sampled prefix. UTF-8 validity is not required here since Decode
// applies lossy decoding regardless.
func isProbablyText(raw []byte) bool {
	n := len(raw)
	if n > 512 {
		n = 512
	}
	return !bytes.Contains(raw[:n], []byte{0})
}

// Decode classifies and fully decodes an object's raw bytes into its
// plain-text content. advertisedSize is the object-store-reported size
// used for the "too small" ignore rule.
// Returns (text, ignoredReason, err): a non-empty ignoredReason means
// the object should be marked ignored rather than processed further.
func Decode(raw []byte, advertisedSize int64) (text string, ignoredReason string, err error) {
	if advertisedSize < minValidSize {
		return "", "no valid contents", nil
	}

	switch Detect(raw) {
	case ContainerGzip:
		r, gerr := gzip.NewReader(bytes.NewReader(raw))
		if gerr != nil {
			return "", "", fmt.Errorf("%w: %v", errs.ErrUnknownFormat, gerr)
		}
		defer r.Close()
		b, rerr := io.ReadAll(r)
		if rerr != nil {
			return "", "", fmt.Errorf("%w: %v", errs.ErrUnknownFormat, rerr)
		}
		return lossyUTF8(b), "", nil
	case ContainerBzip2:
		b, rerr := io.ReadAll(bzip2.NewReader(bytes.NewReader(raw)))
		if rerr != nil {
			return "", "", fmt.Errorf("%w: %v", errs.ErrUnknownFormat, rerr)
		}
		return lossyUTF8(b), "", nil
	case ContainerZip:
		zr, zerr := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
		if zerr != nil || len(zr.File) == 0 {
			return "", "", fmt.Errorf("%w: empty or invalid zip", errs.ErrUnknownFormat)
		}
		f, ferr := zr.File[0].Open()
		if ferr != nil {
			return "", "", fmt.Errorf("%w: %v", errs.ErrUnknownFormat, ferr)
		}
		defer f.Close()
		b, rerr := io.ReadAll(f)
		if rerr != nil {
			return "", "", fmt.Errorf("%w: %v", errs.ErrUnknownFormat, rerr)
		}
		return lossyUTF8(b), "", nil
	case ContainerPlain:
		return lossyUTF8(raw), "", nil
	default:
		return "", "", errs.ErrUnknownFormat
	}
}

// lossyUTF8 decodes b as UTF-8, dropping invalid byte sequences rather
// than failing; valid text around them is kept.
func lossyUTF8(b []byte) string {
	return string(bytes.ToValidUTF8(b, nil))
}
