package logsource

import (
	"encoding/json"

	"github.com/buger/jsonparser"

	"github.com/gravshift/esloader/internal/logconfig"
	"github.com/gravshift/esloader/internal/normalize"
)

// StripCWL unwraps the CloudWatch Logs subscription envelope: each
// payload is one envelope; only DATA_MESSAGE envelopes expand, one
// Record per logEvents[i], carrying log group/stream/account
// provenance meta.
func StripCWL(payloads []normalize.Payload) []normalize.Record {
	var out []normalize.Record
	for _, p := range payloads {
		env := p.Parsed
		if env == nil {
			continue
		}
		if mt, _ := env["messageType"].(string); mt != "DATA_MESSAGE" {
			continue
		}
		owner, _ := env["owner"].(string)
		logGroup, _ := env["logGroup"].(string)
		logStream, _ := env["logStream"].(string)
		events, _ := env["logEvents"].([]interface{})
		for _, e := range events {
			em, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			meta := normalize.Meta{
				LogGroup:     logGroup,
				LogStream:    logStream,
				CWLAccountID: owner,
			}
			if id, ok := em["id"].(string); ok {
				meta.CWLID = id
			}
			if ts, ok := em["timestamp"].(float64); ok {
				meta.CWLTimestamp = int64(ts)
			}
			msg, _ := em["message"].(string)
			out = append(out, normalize.Record{Payload: parseMaybeJSON(msg), Meta: meta})
		}
	}
	return out
}

// StripCWE applies the CloudWatch Events per-record envelope: when a
// parsed JSON record has both detail-type and resources, the payload
// becomes record.detail and provenance is captured. Records that do
// not match the shape pass through unchanged.
func StripCWE(rec normalize.Record) normalize.Record {
	d := rec.Payload.Parsed
	if d == nil {
		return rec
	}
	_, hasDetailType := d["detail-type"]
	_, hasResources := d["resources"]
	if !hasDetailType || !hasResources {
		return rec
	}
	if id, ok := d["id"].(string); ok {
		rec.Meta.CWEID = id
	}
	if src, ok := d["source"].(string); ok {
		rec.Meta.CWESource = src
	}
	if acct, ok := d["account"].(string); ok {
		rec.Meta.CWEAccountID = acct
	}
	if region, ok := d["region"].(string); ok {
		rec.Meta.CWERegion = region
	}
	if t, ok := d["time"].(string); ok {
		rec.Meta.CWETimestamp = t
	}
	detail, _ := d["detail"].(map[string]interface{})
	rec.Payload = normalize.Payload{Parsed: normalize.Dict(detail)}
	return rec
}

// firelensEnvelopeKeys lists the FireLens envelope fields
// parseFirelensEnvelope extracts, in the index order its callback uses.
var firelensEnvelopeKeys = [][]string{
	{"container_id"},
	{"container_name"},
	{"source"},
	{"ecs_cluster"},
	{"ecs_task_arn"},
	{"ecs_task_definition"},
	{"ec2_instance_id"},
	{"log"},
}

// parseFirelensEnvelope pulls the handful of fields StripFireLens
// needs straight out of the line's bytes, skipping a full map decode
// of an envelope whose remaining fields (timestamps, source ids) are
// never read.
func parseFirelensEnvelope(line []byte) (meta normalize.Meta, rawLog string, ok bool) {
	found := false
	jsonparser.EachKey(line, func(idx int, value []byte, vt jsonparser.ValueType, err error) {
		if err != nil || vt != jsonparser.String {
			return
		}
		s, perr := jsonparser.ParseString(value)
		if perr != nil {
			return
		}
		found = true
		switch idx {
		case 0:
			meta.ContainerID = s
		case 1:
			meta.ContainerName = s
		case 2:
			meta.ContainerSource = s
		case 3:
			meta.ECSCluster = s
		case 4:
			meta.ECSTaskARN = s
		case 5:
			meta.ECSTaskDefinition = s
		case 6:
			meta.EC2InstanceID = s
		case 7:
			rawLog = s
		}
	}, firelensEnvelopeKeys...)
	return meta, rawLog, found
}

// StripFireLens unwraps the FireLens container-log envelope: each line
// is a JSON object whose "log" field is the record payload; container
// and ECS/EC2 metadata is extracted, and stderr lines are either
// ignored or flagged to skip normalization depending on configuration.
func StripFireLens(lines []string, cfg *logconfig.Config) []normalize.Record {
	out := make([]normalize.Record, 0, len(lines))
	for _, line := range lines {
		meta, rawLog, ok := parseFirelensEnvelope([]byte(line))
		if !ok {
			continue
		}

		if meta.ContainerSource == "stderr" {
			if cfg.IgnoreContainerStderr {
				meta.IsIgnored = true
				meta.IgnoredReason = "container stderr ignored"
				out = append(out, normalize.Record{Payload: normalize.Payload{Text: rawLog}, Meta: meta})
				continue
			}
			meta.SkipNormalization = true
			meta.ErrorMessage = rawLog
			out = append(out, normalize.Record{Payload: normalize.Payload{Text: rawLog}, Meta: meta})
			continue
		}

		if cfg.FileFormat == logconfig.FormatJSON {
			var parsed map[string]interface{}
			if err := json.Unmarshal([]byte(rawLog), &parsed); err != nil {
				meta.SkipNormalization = true
				meta.ErrorMessage = "Invalid file format found during parsing"
				out = append(out, normalize.Record{Payload: normalize.Payload{Text: rawLog}, Meta: meta})
				continue
			}
			out = append(out, normalize.Record{Payload: normalize.Payload{Parsed: normalize.Dict(parsed)}, Meta: meta})
			continue
		}

		out = append(out, normalize.Record{Payload: normalize.Payload{Text: rawLog}, Meta: meta})
	}
	return out
}

// parseMaybeJSON parses s as JSON when possible, falling back to a
// plain text payload.
func parseMaybeJSON(s string) normalize.Payload {
	var v map[string]interface{}
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return normalize.Payload{Parsed: normalize.Dict(v)}
	}
	return normalize.Payload{Text: s}
}
