package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKey(t *testing.T) {
	got, err := DecodeKey("AWSLogs/123/CloudTrail/2024%2F01%2F01/file+name.json.gz")
	require.NoError(t, err)
	assert.Equal(t, "AWSLogs/123/CloudTrail/2024/01/01/file name.json.gz", got)
}

func TestDecodeKeyPlain(t *testing.T) {
	got, err := DecodeKey("plain/key/no/escapes.json")
	require.NoError(t, err)
	assert.Equal(t, "plain/key/no/escapes.json", got)
}
