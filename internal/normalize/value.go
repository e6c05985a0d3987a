// Package normalize implements the per-record transform pipeline:
// field mapping into the ECS-shaped output, timestamp resolution,
// geo/ASN enrichment, and the nested-map utilities the rest of the
// pipeline is built on.
//
// Go's interface{} plus type switches already gives the
// "scalar | list<value> | map<string,value>" tagged variant a record
// value needs; a bespoke sum type would just reimplement what
// interface{} does natively, so nested records are plain
// map[string]interface{} throughout.
package normalize

import (
	"fmt"
	"sort"
	"strings"
)

// toFmtString renders a scalar for comparison/merge purposes using the
// same loose stringification the original merge_dicts relies on
// (Python's implicit str(x)).
func toFmtString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Dict is a nested record: map[string]interface{} where values are
// scalars, []interface{}, or nested Dicts.
type Dict = map[string]interface{}

// GetPath digs a dotted key path ("a.b.c") out of a nested Dict,
// returning ok=false if any segment is missing or not a Dict.
func GetPath(d Dict, dotted string) (interface{}, bool) {
	if d == nil || dotted == "" {
		return nil, false
	}
	parts := strings.Split(dotted, ".")
	var cur interface{} = d
	for _, p := range parts {
		m, ok := cur.(Dict)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// FirstNonEmpty resolves a whitespace-joined alternatives string
// ("a.b c.d") against d, returning the first non-empty match. This is
// MapFields' single-path / alternatives-list case.
func FirstNonEmpty(d Dict, alternatives string) (interface{}, bool) {
	for _, key := range strings.Fields(alternatives) {
		if v, ok := GetPath(d, key); ok && !isEmptyValue(v) {
			return v, true
		}
	}
	return nil, false
}

// SortedUniqueStrings resolves a list of dotted paths, each against d,
// and returns the sorted unique set of their string forms. This is
// MapFields' list-of-paths case.
func SortedUniqueStrings(d Dict, paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if v, ok := GetPath(d, p); ok && !isEmptyValue(v) {
			seen[toFmtString(v)] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// PutPath places value at the dotted key path inside d, creating
// intermediate Dicts as needed, and returns d for chaining.
func PutPath(d Dict, dotted string, value interface{}) Dict {
	if d == nil {
		d = Dict{}
	}
	parts := strings.Split(dotted, ".")
	cur := d
	for i, p := range parts {
		if i == len(parts)-1 {
			cur[p] = value
			break
		}
		next, ok := cur[p].(Dict)
		if !ok {
			next = Dict{}
			cur[p] = next
		}
		cur = next
	}
	return d
}

// MergeDicts deep-merges b into a: dict+dict recurses, equal scalars
// keep a, a "substring wins" rule lets a stringified-JSON value be
// promoted back to structured data, and anything else is a plain
// override by b. a is mutated and returned; pass a fresh Dict{} if
// that isn't wanted.
func MergeDicts(a, b Dict) Dict {
	if a == nil {
		a = Dict{}
	}
	for k, bv := range b {
		av, exists := a[k]
		if !exists {
			a[k] = bv
			continue
		}
		adict, aIsDict := av.(Dict)
		bdict, bIsDict := bv.(Dict)
		if aIsDict && bIsDict {
			a[k] = MergeDicts(adict, bdict)
			continue
		}
		if scalarEqual(av, bv) {
			continue // same leaf value, keep a
		}
		as, bs := scalarString(av), scalarString(bv)
		if as != "" && strings.Contains(bs, as) {
			a[k] = bv
			continue
		}
		a[k] = bv
	}
	return a
}

func scalarEqual(a, b interface{}) bool {
	return scalarString(a) == scalarString(b) && sameKind(a, b)
}

func sameKind(a, b interface{}) bool {
	switch a.(type) {
	case Dict:
		_, ok := b.(Dict)
		return ok
	case []interface{}:
		_, ok := b.([]interface{})
		return ok
	default:
		switch b.(type) {
		case Dict, []interface{}:
			return false
		default:
			return true
		}
	}
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return toFmtString(t)
	}
}

// SanitizeKeys replaces '-' with '_' in every map key, recursively,
// matching utils.sanitize_keys / convert_keyname_to_safe_field.
func SanitizeKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case Dict:
		out := make(Dict, len(t))
		for k, val := range t {
			nk := strings.ReplaceAll(k, "-", "_")
			out[nk] = SanitizeKeys(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = SanitizeKeys(val)
		}
		return out
	default:
		return v
	}
}

// DeleteEmpty recursively strips keys whose value is nil, an empty
// Dict, an empty list, or one of the sentinel empty strings
// ("", "-", "null", "[]"), matching LogParser.del_none.
func DeleteEmpty(d Dict) Dict {
	for k, v := range d {
		switch t := v.(type) {
		case Dict:
			DeleteEmpty(t)
			if len(t) == 0 {
				delete(d, k)
			}
		case []interface{}:
			if len(t) == 0 {
				delete(d, k)
			}
		case string:
			switch t {
			case "", "-", "null", "[]":
				delete(d, k)
			}
		case nil:
			delete(d, k)
		}
	}
	return d
}

func isEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case Dict:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	default:
		return false
	}
}
