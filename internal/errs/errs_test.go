package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsWrapAndUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("fetching object: %w", ErrFetchFailed)
	assert.True(t, errors.Is(wrapped, ErrFetchFailed))
	assert.False(t, errors.Is(wrapped, ErrBadTimestamp))
}

func TestIgnoredIsNotASentinel(t *testing.T) {
	ig := NewIgnored("s3_key_ignored matched")
	assert.Equal(t, "s3_key_ignored matched", ig.Error())
	var target *Ignored
	assert.True(t, errors.As(error(ig), &target))
}
