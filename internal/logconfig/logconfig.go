// Package logconfig defines the per-log-type ruleset the core receives
// as an external capability — normally assembled by a ruleset loader
// outside this repository's scope, but representable and loadable
// here for tests and the local-run harness.
package logconfig

import (
	"regexp"

	"github.com/gobwas/glob"
)

// FileFormat enumerates the logical record layouts FormatReaders know
// how to split.
type FileFormat string

const (
	FormatText       FileFormat = "text"
	FormatCSV        FileFormat = "csv"
	FormatJSON       FileFormat = "json"
	FormatMultiline  FileFormat = "multiline"
	FormatXML        FileFormat = "xml"
	FormatWinEvtXML  FileFormat = "winevtxml"
)

// IndexRotation enumerates how the destination index name rotates.
type IndexRotation string

const (
	RotationAuto    IndexRotation = "auto"
	RotationDaily   IndexRotation = "daily"
	RotationWeekly  IndexRotation = "weekly"
	RotationMonthly IndexRotation = "monthly"
	RotationYearly  IndexRotation = "yearly"
)

// IndexTimeSource selects which timestamp drives index rotation.
type IndexTimeSource string

const (
	IndexTimeIngested IndexTimeSource = "event_ingested"
	IndexTimeEvent    IndexTimeSource = "event"
)

// FieldSpec describes where an ECS target field's value comes from:
// either a whitespace-joined list of dotted-path alternatives (first
// non-empty wins) or a list of dotted paths whose non-empty values are
// collected into a sorted unique set.
type FieldSpec struct {
	// Alternatives holds a whitespace-joined "a.b c.d" string. Set
	// when Paths is empty.
	Alternatives string
	// Paths holds an explicit list of dotted paths. When non-empty
	// this spec produces a sorted-unique-set result instead of a
	// first-match result.
	Paths []string
}

// IsList reports whether this spec is the list-of-paths form.
func (f FieldSpec) IsList() bool { return len(f.Paths) > 0 }

// Config is the immutable, per-log-type ruleset bundle.
type Config struct {
	LogType string

	FileFormat FileFormat

	ViaCWL      bool
	ViaFirelens bool

	// MultilineFirstline marks the first line of a multi-line record;
	// required when FileFormat is multiline, xml, or winevtxml.
	MultilineFirstline *regexp.Regexp

	// TextHeaderLineNumber is the count of leading lines to skip for
	// FormatText.
	TextHeaderLineNumber int

	// S3KeyIgnored, when set and matching an object key, causes the
	// object to be ignored outright.
	S3KeyIgnored *regexp.Regexp

	// S3KeyIgnoredGlob is a cheaper glob-style alternative to
	// S3KeyIgnored for rulesets that only need "prefix/*.tmp"-style
	// key exclusion without full regex support.
	S3KeyIgnoredGlob glob.Glob

	// JSONDelimiter names a key identifying an array inside a JSON
	// envelope that itself contains the records.
	JSONDelimiter string

	IgnoreContainerStderr bool

	TimestampKey    string
	TimestampFormat string
	// TimestampTZHours is a fixed UTC offset in hours.
	TimestampTZHours float64
	TimestampNano    bool

	// IndexTZHours, when non-nil, converts the rotation timestamp to
	// this UTC offset before formatting.
	IndexTZHours *float64
	IndexRotation IndexRotation
	IndexTime     IndexTimeSource
	IndexName     string

	// ECS lists the target schema keys this log type populates, and
	// Fields holds each key's source specification.
	ECS    []string
	Fields map[string]FieldSpec

	// StaticECS lists target keys whose values come straight from
	// StaticValues rather than the record.
	StaticECS    []string
	StaticValues map[string]interface{}

	CloudProvider string
	ECSVersion    string

	DocID       string
	DocIDSuffix string

	// JSONToText lists dotted paths whose values must be coerced to
	// strings to avoid mixed-type field conflicts downstream.
	JSONToText []string

	// GeoIP lists ECS keys whose nested ".ip" field should be
	// resolved against the geo/ASN database.
	GeoIP []string

	ScriptECS bool

	// LogPattern is the named-group regex used to parse a record into
	// fields when FileFormat is text or multiline.
	LogPattern *regexp.Regexp

	MaxLogCount int

	// ExcludePatterns, when set, drops any record matching one of
	// these compiled patterns before it is emitted. Concrete type is
	// map[string]*normalize.Pattern; kept as interface{} here so this
	// package does not need to import normalize.
	ExcludePatterns interface{}
}

// DefaultMaxLogCount is used when a Config leaves MaxLogCount unset
// (<= 0); it matches the original Lambda loader's conservative default
// for a single invocation.
const DefaultMaxLogCount = 2000

// EffectiveMaxLogCount returns c.MaxLogCount, or DefaultMaxLogCount if
// unset.
func (c *Config) EffectiveMaxLogCount() int {
	if c.MaxLogCount <= 0 {
		return DefaultMaxLogCount
	}
	return c.MaxLogCount
}
