package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPath(t *testing.T) {
	d := Dict{"a": Dict{"b": Dict{"c": "v"}}}
	v, ok := GetPath(d, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok = GetPath(d, "a.x.c")
	assert.False(t, ok)

	_, ok = GetPath(d, "")
	assert.False(t, ok)
}

func TestFirstNonEmpty(t *testing.T) {
	d := Dict{"a": "", "b": Dict{"c": "hit"}}
	v, ok := FirstNonEmpty(d, "a b.c")
	require.True(t, ok)
	assert.Equal(t, "hit", v)

	_, ok = FirstNonEmpty(d, "a missing")
	assert.False(t, ok)
}

func TestSortedUniqueStrings(t *testing.T) {
	d := Dict{"a": "x", "b": "y", "c": "x"}
	got := SortedUniqueStrings(d, []string{"a", "b", "c", "missing"})
	assert.Equal(t, []string{"x", "y"}, got)
}

func TestPutPath(t *testing.T) {
	d := Dict{}
	PutPath(d, "a.b.c", "v")
	v, ok := GetPath(d, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestMergeDicts(t *testing.T) {
	a := Dict{"k": "same", "nested": Dict{"x": 1}}
	b := Dict{"k": "same", "nested": Dict{"y": 2}, "new": "field"}
	out := MergeDicts(a, b)
	assert.Equal(t, "same", out["k"])
	assert.Equal(t, "field", out["new"])
	nested := out["nested"].(Dict)
	assert.Equal(t, 1, nested["x"])
	assert.Equal(t, 2, nested["y"])
}

func TestMergeDictsStructuredOverridesStringifiedJSON(t *testing.T) {
	a := Dict{"payload": `{"a":1}`}
	b := Dict{"payload": Dict{"a": float64(1)}}
	// b's string form ("map[a:1]") does not contain a's string
	// ("{"a":1}"), so this exercises the plain-override path, not the
	// substring-wins path; substring-wins needs a ⊂ b.
	out := MergeDicts(a, b)
	assert.IsType(t, Dict{}, out["payload"])
}

func TestSanitizeKeys(t *testing.T) {
	d := Dict{"a-b": "v", "nested": Dict{"c-d": 1}}
	out := SanitizeKeys(d).(Dict)
	assert.Contains(t, out, "a_b")
	nested := out["nested"].(Dict)
	assert.Contains(t, nested, "c_d")
}

func TestDeleteEmpty(t *testing.T) {
	d := Dict{
		"keep":  "v",
		"empty": "",
		"dash":  "-",
		"null":  "null",
		"list":  []interface{}{},
		"nil":   nil,
		"deep":  Dict{"inner": ""},
	}
	out := DeleteEmpty(d)
	assert.Equal(t, Dict{"keep": "v"}, out)
}
