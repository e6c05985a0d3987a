package normalize

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clbanning/mxj/v2"

	"github.com/gravshift/esloader/internal/geo"
	"github.com/gravshift/esloader/internal/logconfig"
)

// Normalizer turns a raw Record into a finalized, indexable document:
// it resolves the record's shape into a map, resolves its timestamp,
// maps configured fields onto ECS paths, runs enrichment, and assigns
// a deterministic id and index name. One instance is built per object
// and reused across every record decoded from it.
type Normalizer struct {
	Config    *logconfig.Config
	Transform Transform
	Geo       geo.Lookup

	Bucket string
	Key    string
	LogType string

	// KeyAccount/KeyRegion are derived once per object from the S3
	// key and used as the lowest-priority fallback for
	// cloud.account.id/cloud.region.
	KeyAccount string
	KeyRegion  string

	// tsLayoutHint remembers which fallbackTimestampLayouts entry last
	// matched for this object, so timestamp_format-less log types don't
	// rescan the whole layout list on every record.
	tsLayoutHint int
}

// Result is one finalized, emittable document.
type Result struct {
	Doc       []byte
	DocID     string
	IndexName string
	Timestamp time.Time
	Ignored   bool
	Reason    string
}

// Normalize runs the full per-record pipeline: parse to a map, resolve
// the timestamp, add basic fields, clean configured JSON-to-text
// fields, map fields onto ECS paths, run the optional script
// transform, enrich with geo/ASN data, assign id and index name, and
// finalize the document.
func (n *Normalizer) Normalize(rec Record, now time.Time) (*Result, error) {
	if rec.Meta.IsIgnored {
		return &Result{Ignored: true, Reason: rec.Meta.IgnoredReason}, nil
	}

	record := n.parseToMap(rec.Payload)
	eventIngested := now.UTC()

	var ts time.Time
	var err error
	if rec.Meta.SkipNormalization {
		ts = eventIngested
	} else {
		ts, err = ResolveTimestamp(record, rec.Meta, n.Config, eventIngested, &n.tsLayoutHint)
		if err != nil {
			return nil, err
		}
	}

	n.addBasicFields(record, rec, eventIngested, ts)

	for _, k := range n.Config.JSONToText {
		cleanJSONToText(record, k)
	}

	mapped := MapFields(record, rec.Meta, n.Config, n.KeyAccount, n.KeyRegion)
	mapped["@message"] = messageText(rec.Payload)
	PutPath(mapped, "event.ingested", eventIngested.Format(time.RFC3339Nano))
	mapped["@timestamp"] = ts.Format(time.RFC3339Nano)
	PutPath(mapped, "event.module", n.LogType)
	mapped["@log_type"] = n.LogType
	mapped["logtype"] = n.LogType
	mapped["@log_s3bucket"] = n.Bucket
	mapped["@log_s3key"] = n.Key
	if rec.Meta.LogGroup != "" {
		mapped["@log_group"] = rec.Meta.LogGroup
	}
	if rec.Meta.LogStream != "" {
		mapped["@log_stream"] = rec.Meta.LogStream
	}
	if n.Config.ECSVersion != "" {
		PutPath(mapped, "ecs.version", n.Config.ECSVersion)
	}
	if rec.Meta.SkipNormalization && rec.Meta.ErrorMessage != "" {
		PutPath(mapped, "error.message", rec.Meta.ErrorMessage)
	}

	xform := n.Transform
	if n.Config.ScriptECS && xform != nil {
		mapped, err = xform.Transform(mapped)
		if err != nil {
			return nil, err
		}
	}

	Enrich(mapped, n.Config, n.Geo)

	docIDSuffix, indexOverride, hasSuffix, hasIndexOverride := PopSentinels(mapped)

	baseID := n.computeBaseID(mapped, rec)
	docID := baseID
	if hasSuffix {
		docID = baseID + "_" + docIDSuffix
	} else if n.Config.DocIDSuffix != "" {
		if v, ok := GetPath(mapped, n.Config.DocIDSuffix); ok {
			if s := toFmtString(v); s != "" {
				docID = baseID + "_" + s
			}
		}
	}
	mapped["@id"] = docID

	indexName := indexOverride
	if !hasIndexOverride {
		indexName = n.computeIndexName(mapped, ts, eventIngested)
	}

	if patterns, ok := n.Config.ExcludePatterns.(map[string]*Pattern); ok && patterns != nil {
		if matched, path := ExcludeMatch(mapped, patterns); matched {
			return &Result{Ignored: true, Reason: "excluded by pattern: " + path}, nil
		}
	}

	out, err := Finalize(mapped)
	if err != nil {
		return nil, err
	}
	return &Result{Doc: out, DocID: docID, IndexName: indexName, Timestamp: ts}, nil
}

func (n *Normalizer) parseToMap(p Payload) Dict {
	if p.IsParsed() {
		m := Dict{}
		for k, v := range p.Parsed {
			m[k] = v
		}
		return SanitizeKeys(m).(Dict)
	}
	switch n.Config.FileFormat {
	case logconfig.FormatXML, logconfig.FormatWinEvtXML:
		if m, err := decodeXML(p.Text); err == nil {
			return m
		}
	}
	if n.Config.LogPattern != nil {
		if m := matchLogPattern(n.Config, p.Text); m != nil {
			return m
		}
	}
	return Dict{"message": p.Text}
}

// decodeXML turns one XML document's text into a nested map using the
// same element/attribute folding rules Windows Event Log XML and
// generic XML both need: repeated siblings become lists, and attributes
// get mxj's "-" prefix, which SanitizeKeys then turns into "_".
func decodeXML(text string) (Dict, error) {
	m, err := mxj.NewMapXml([]byte(text))
	if err != nil {
		return nil, err
	}
	return SanitizeKeys(Dict(m)).(Dict), nil
}

func matchLogPattern(cfg *logconfig.Config, line string) Dict {
	names := cfg.LogPattern.SubexpNames()
	groups := cfg.LogPattern.FindStringSubmatch(line)
	if groups == nil {
		return nil
	}
	out := Dict{}
	for i, name := range names {
		if i == 0 || name == "" {
			continue
		}
		out[name] = groups[i]
	}
	return out
}

func messageText(p Payload) string {
	if !p.IsParsed() {
		return p.Text
	}
	b, err := json.Marshal(p.Parsed)
	if err != nil {
		return ""
	}
	return string(b)
}

func (n *Normalizer) addBasicFields(record Dict, rec Record, eventIngested, ts time.Time) {
	if rec.Meta.CWLAccountID != "" {
		record["cwl_accountid"] = rec.Meta.CWLAccountID
	}
	if rec.Meta.CWEAccountID != "" {
		record["cwe_accountid"] = rec.Meta.CWEAccountID
	}
	if rec.Meta.CWERegion != "" {
		record["cwe_region"] = rec.Meta.CWERegion
	}
}

func (n *Normalizer) computeBaseID(mapped Dict, rec Record) string {
	msg, _ := mapped["@message"].(string)
	if rec.Meta.SkipNormalization {
		return md5Hex(msg + n.Key)
	}
	if n.Config.DocID != "" {
		if v, ok := GetPath(mapped, n.Config.DocID); ok {
			if s := toFmtString(v); s != "" {
				return md5Hex(s)
			}
		}
	}
	return md5Hex(msg)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return fmt.Sprintf("%x", sum)
}

// strftimeWWeek computes the week number the way C/Python's
// strftime("%W") does: weeks start on Monday, and every day before the
// year's first Monday falls in week 00. This is not ISO-8601 week
// numbering (time.Time.ISOWeek) — ISO weeks are Monday-based too but
// can belong to the adjacent year at year boundaries, which would
// shift rotated index names away from what %W produces on exactly
// those boundary dates.
func strftimeWWeek(t time.Time) int {
	yday := t.YearDay()
	jan1 := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	jan1MonBased := (int(jan1.Weekday()) + 6) % 7
	firstMonday := 1 + (7-jan1MonBased)%7
	if yday < firstMonday {
		return 0
	}
	return (yday-firstMonday)/7 + 1
}

// computeIndexName applies the index-name rotation rule.
func (n *Normalizer) computeIndexName(mapped Dict, ts, eventIngested time.Time) string {
	base := n.Config.IndexName
	if n.Config.IndexRotation == logconfig.RotationAuto || n.Config.IndexRotation == "" {
		return base
	}

	t := eventIngested
	if n.Config.IndexTime == logconfig.IndexTimeEvent {
		t = ts
	}
	if n.Config.IndexTZHours != nil {
		t = t.In(time.FixedZone("", int(*n.Config.IndexTZHours*3600)))
	}

	switch n.Config.IndexRotation {
	case logconfig.RotationDaily:
		return fmt.Sprintf("%s-%s", base, t.Format("2006-01-02"))
	case logconfig.RotationWeekly:
		return fmt.Sprintf("%s-%d-w%02d", base, t.Year(), strftimeWWeek(t))
	case logconfig.RotationMonthly:
		return fmt.Sprintf("%s-%s", base, t.Format("2006-01"))
	case logconfig.RotationYearly:
		return fmt.Sprintf("%s-%d", base, t.Year())
	default:
		return base
	}
}
