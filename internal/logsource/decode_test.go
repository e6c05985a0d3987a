package logsource

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTooSmallIgnored(t *testing.T) {
	_, reason, err := Decode([]byte("tiny"), 4)
	require.NoError(t, err)
	assert.Equal(t, "no valid contents", reason)
}

func TestDecodePlainText(t *testing.T) {
	body := []byte("hello world, this is plain text content of decent length")
	text, reason, err := Decode(body, int64(len(body)))
	require.NoError(t, err)
	assert.Empty(t, reason)
	assert.Equal(t, string(body), text)
}

func TestDecodeGzip(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(`{"messageType":"DATA_MESSAGE"}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	text, reason, err := Decode(buf.Bytes(), int64(buf.Len()))
	require.NoError(t, err)
	assert.Empty(t, reason)
	assert.Contains(t, text, "DATA_MESSAGE")
}

func TestDetectUnknownFormat(t *testing.T) {
	raw := bytes.Repeat([]byte{0x00, 0x01, 0x02}, 10)
	c := Detect(raw)
	assert.Equal(t, ContainerUnknown, c)
}
