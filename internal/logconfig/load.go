package logconfig

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// jsonConfig is the on-disk shape LoadSet decodes, matching Config's
// field semantics; ExcludePatterns has no on-disk form and is left
// unset by LoadSet. encoding/json is used directly here
// (not goccy/go-json): these are small, one-time configuration blobs,
// not a hot decode path, so the faster decoder's benefit would not be
// exercised.
type jsonConfig struct {
	LogType string `json:"log_type"`

	FileFormat string `json:"file_format"`

	ViaCWL      bool `json:"via_cwl"`
	ViaFirelens bool `json:"via_firelens"`

	MultilineFirstline  string `json:"multiline_firstline"`
	TextHeaderLineNumber int   `json:"text_header_line_number"`
	S3KeyIgnored         string `json:"s3_key_ignored"`
	S3KeyIgnoredGlob     string `json:"s3_key_ignored_glob"`
	JSONDelimiter        string `json:"json_delimiter"`

	IgnoreContainerStderr bool `json:"ignore_container_stderr"`

	TimestampKey     string  `json:"timestamp_key"`
	TimestampFormat  string  `json:"timestamp_format"`
	TimestampTZHours float64 `json:"timestamp_tz"`
	TimestampNano    bool    `json:"timestamp_nano"`

	IndexTZHours  *float64 `json:"index_tz"`
	IndexRotation string   `json:"index_rotation"`
	IndexTime     string   `json:"index_time"`
	IndexName     string   `json:"index_name"`

	ECS    string                     `json:"ecs"`
	Fields map[string]jsonFieldSpec   `json:"fields"`

	StaticECS    string                 `json:"static_ecs"`
	StaticValues map[string]interface{} `json:"static_values"`

	CloudProvider string `json:"cloud_provider"`
	ECSVersion    string `json:"ecs_version"`

	DocID       string `json:"doc_id"`
	DocIDSuffix string `json:"doc_id_suffix"`

	JSONToText string `json:"json_to_text"`
	GeoIP      string `json:"geoip"`

	ScriptECS bool `json:"script_ecs"`

	LogPattern string `json:"log_pattern"`

	MaxLogCount int `json:"max_log_count"`
}

type jsonFieldSpec struct {
	Alternatives string   `json:"alternatives"`
	Paths        []string `json:"paths"`
}

// LoadSet decodes a JSON array of log-type configurations into a
// map keyed by log_type, for tests and the local-run harness.
func LoadSet(raw []byte) (map[string]*Config, error) {
	var list []jsonConfig
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode logconfig set: %w", err)
	}
	out := make(map[string]*Config, len(list))
	for _, jc := range list {
		c, err := jc.compile()
		if err != nil {
			return nil, fmt.Errorf("logtype %q: %w", jc.LogType, err)
		}
		out[jc.LogType] = c
	}
	return out, nil
}

func (jc jsonConfig) compile() (*Config, error) {
	c := &Config{
		LogType:               jc.LogType,
		FileFormat:            FileFormat(jc.FileFormat),
		ViaCWL:                jc.ViaCWL,
		ViaFirelens:           jc.ViaFirelens,
		TextHeaderLineNumber:  jc.TextHeaderLineNumber,
		JSONDelimiter:         jc.JSONDelimiter,
		IgnoreContainerStderr: jc.IgnoreContainerStderr,
		TimestampKey:          jc.TimestampKey,
		TimestampFormat:       jc.TimestampFormat,
		TimestampTZHours:      jc.TimestampTZHours,
		TimestampNano:         jc.TimestampNano,
		IndexTZHours:          jc.IndexTZHours,
		IndexRotation:         IndexRotation(jc.IndexRotation),
		IndexTime:             IndexTimeSource(jc.IndexTime),
		IndexName:             jc.IndexName,
		StaticValues:          jc.StaticValues,
		CloudProvider:         jc.CloudProvider,
		ECSVersion:            jc.ECSVersion,
		DocID:                 jc.DocID,
		DocIDSuffix:           jc.DocIDSuffix,
		ScriptECS:             jc.ScriptECS,
		MaxLogCount:           jc.MaxLogCount,
	}

	var err error
	if c.MultilineFirstline, err = compileOptional(jc.MultilineFirstline); err != nil {
		return nil, fmt.Errorf("multiline_firstline: %w", err)
	}
	if c.S3KeyIgnored, err = compileOptional(jc.S3KeyIgnored); err != nil {
		return nil, fmt.Errorf("s3_key_ignored: %w", err)
	}
	if c.LogPattern, err = compileOptional(jc.LogPattern); err != nil {
		return nil, fmt.Errorf("log_pattern: %w", err)
	}
	if jc.S3KeyIgnoredGlob != "" {
		if c.S3KeyIgnoredGlob, err = glob.Compile(jc.S3KeyIgnoredGlob); err != nil {
			return nil, fmt.Errorf("s3_key_ignored_glob: %w", err)
		}
	}

	c.ECS = spaceList(jc.ECS)
	c.StaticECS = spaceList(jc.StaticECS)
	c.JSONToText = spaceList(jc.JSONToText)
	c.GeoIP = spaceList(jc.GeoIP)

	c.Fields = make(map[string]FieldSpec, len(jc.Fields))
	for k, fs := range jc.Fields {
		c.Fields[k] = FieldSpec{Alternatives: fs.Alternatives, Paths: fs.Paths}
	}

	return c, nil
}

func compileOptional(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}

func spaceList(s string) []string {
	return strings.Fields(s)
}
