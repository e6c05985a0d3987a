package normalize

import (
	"net"
	"strconv"
	"strings"

	"github.com/gravshift/esloader/internal/logconfig"
)

// MapFields walks cfg's declarative ECS field spec to pull source
// fields out of record into a new ECS-shaped Dict, then layers
// cloud-identity defaults, FireLens overrides, static injection, and
// multi-type cleaning on top, in that order.
func MapFields(record Dict, meta Meta, cfg *logconfig.Config, keyAccount, keyRegion string) Dict {
	out := Dict{}

	for _, k := range cfg.ECS {
		spec, ok := cfg.Fields[k]
		if !ok {
			continue
		}
		var v interface{}
		var has bool
		if spec.IsList() {
			if ss := SortedUniqueStrings(record, spec.Paths); len(ss) > 0 {
				lst := make([]interface{}, len(ss))
				for i, s := range ss {
					lst[i] = s
				}
				v, has = lst, true
			}
		} else {
			v, has = FirstNonEmpty(record, spec.Alternatives)
		}
		if !has {
			continue
		}
		if strings.HasSuffix(k, ".ip") || k == "ip" {
			if s, ok := v.(string); ok {
				if net.ParseIP(s) == nil {
					continue // invalid IP, drop the field entirely
				}
			}
		}
		PutPath(out, k, v)
	}

	if cfg.CloudProvider != "" {
		applyCloudIdentityDefaults(out, keyAccount, keyRegion)
		PutPath(out, "cloud.provider", cfg.CloudProvider)
	}

	applyFirelensOverrides(out, meta)

	for _, k := range cfg.StaticECS {
		if v, ok := cfg.StaticValues[k]; ok {
			PutPath(out, k, v)
		}
	}

	for _, k := range cfg.JSONToText {
		cleanJSONToText(out, k)
	}

	return out
}

// applyCloudIdentityDefaults applies the cloud.account.id /
// cloud.region fallback chain.
func applyCloudIdentityDefaults(out Dict, keyAccount, keyRegion string) {
	acct, _ := GetPath(out, "cloud.account.id")
	acctStr, _ := acct.(string)
	if acctStr == "" || acctStr == "unknown" {
		if keyAccount != "" {
			PutPath(out, "cloud.account.id", keyAccount)
		} else {
			PutPath(out, "cloud.account.id", "unknown")
		}
	}

	region, _ := GetPath(out, "cloud.region")
	regionStr, _ := region.(string)
	if regionStr == "" {
		if keyRegion != "" {
			PutPath(out, "cloud.region", keyRegion)
		} else {
			PutPath(out, "cloud.region", "unknown")
		}
	}
}

// applyFirelensOverrides applies the FireLens override clause: all of
// it — ARN-derived cloud.region/cloud.account.id, cloud.instance.id,
// and the container identifiers — is gated on meta.ecs_task_arn being
// present, matching transform_to_ecs's single enclosing branch. A
// record with a container id/name but no ECS task ARN (not actually a
// FireLens/ECS record) gets none of these fields.
func applyFirelensOverrides(out Dict, meta Meta) {
	if meta.ECSTaskARN == "" {
		return
	}
	// arn:aws:ecs:<region>:<account>:task/...
	parts := strings.SplitN(meta.ECSTaskARN, ":", 6)
	if len(parts) >= 5 {
		if region := parts[3]; region != "" {
			PutPath(out, "cloud.region", region)
		}
		if account := parts[4]; account != "" {
			PutPath(out, "cloud.account.id", account)
		}
	}
	if meta.EC2InstanceID != "" {
		PutPath(out, "cloud.instance.id", meta.EC2InstanceID)
	}
	if meta.ContainerID != "" {
		PutPath(out, "container.id", meta.ContainerID)
	}
	if meta.ContainerName != "" {
		PutPath(out, "container.name", meta.ContainerName)
	}
}

// cleanJSONToText re-inserts the value at dotted path k as a string:
// a string (JSON-shaped or not) keeps its literal form, an integer
// (including an integral float64) becomes its decimal digits with no
// fractional part, and everything else is stringified, matching the
// original's mixed-type collision guard.
func cleanJSONToText(out Dict, k string) {
	v, ok := GetPath(out, k)
	if !ok {
		return
	}
	switch t := v.(type) {
	case string:
		return // already text
	case int:
		PutPath(out, k, strconv.Itoa(t))
	case float64:
		if t == float64(int64(t)) {
			PutPath(out, k, strconv.FormatInt(int64(t), 10))
		} else {
			PutPath(out, k, toFmtString(t))
		}
	default:
		PutPath(out, k, toFmtString(t))
	}
}
