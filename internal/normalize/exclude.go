package normalize

import "regexp"

// Pattern is a recursive exclusion-pattern tree: a leaf is a compiled
// regex, an interior node is a nested map mirroring the record's own
// shape.
type Pattern struct {
	Regex *regexp.Regexp
	Nodes map[string]*Pattern
}

// Leaf builds a leaf Pattern from a compiled regex.
func Leaf(re *regexp.Regexp) *Pattern { return &Pattern{Regex: re} }

// Node builds an interior Pattern from child patterns.
func Node(children map[string]*Pattern) *Pattern { return &Pattern{Nodes: children} }

// ExcludeMatch walks patterns in parallel with record: for each leaf
// regex, if the corresponding scalar field in record matches, it
// returns true along with the dotted key path that matched. Nested
// maps recurse; a list on the record side is never matched (matching
// match_log_with_exclude_patterns' silent skip of list values).
func ExcludeMatch(record Dict, patterns map[string]*Pattern) (bool, string) {
	for key, pat := range patterns {
		v, ok := record[key]
		if !ok {
			continue
		}
		if pat.Nodes != nil {
			if sub, ok := v.(Dict); ok {
				if matched, path := ExcludeMatch(sub, pat.Nodes); matched {
					return true, key + "." + path
				}
			}
			continue
		}
		if pat.Regex == nil {
			continue
		}
		if _, isList := v.([]interface{}); isList {
			continue
		}
		if pat.Regex.MatchString(toFmtString(v)) {
			return true, key
		}
	}
	return false, ""
}
