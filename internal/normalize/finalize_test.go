package normalize

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeRemovesEmpty(t *testing.T) {
	doc := Dict{"keep": "v", "drop": "", "nested": Dict{"x": nil}}
	out, err := Finalize(doc)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "v", decoded["keep"])
	assert.NotContains(t, decoded, "drop")
	assert.NotContains(t, decoded, "nested")
}

func TestFinalizeTruncatesOversizedFields(t *testing.T) {
	big := strings.Repeat("x", 40000)
	doc := Dict{"@message": big, "other": big}
	out, err := Finalize(doc)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, big, decoded["@message"], "@message is exempt from truncation")
	other := decoded["other"].(string)
	assert.Less(t, len(other), len(big))
	assert.True(t, strings.HasSuffix(other, truncatedSuffix))
}

func TestTruncateUTF8RespectsBoundary(t *testing.T) {
	s := strings.Repeat("é", 100) // 2 bytes each in UTF-8
	out := truncateUTF8(s, 51)
	assert.LessOrEqual(t, len(out), 51)
	assert.True(t, utf8.ValidString(out))
}
