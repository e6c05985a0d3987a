package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravshift/esloader/internal/logconfig"
)

func TestMapFieldsBasic(t *testing.T) {
	cfg := &logconfig.Config{
		ECS: []string{"host.name", "source.ip"},
		Fields: map[string]logconfig.FieldSpec{
			"host.name": {Alternatives: "host hostname"},
			"source.ip": {Alternatives: "src_ip"},
		},
	}
	record := Dict{"host": "h1", "src_ip": "10.0.0.1"}
	out := MapFields(record, Meta{}, cfg, "", "")

	v, ok := GetPath(out, "host.name")
	assert.True(t, ok)
	assert.Equal(t, "h1", v)

	v, ok = GetPath(out, "source.ip")
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.1", v)
}

func TestMapFieldsDropsInvalidIP(t *testing.T) {
	cfg := &logconfig.Config{
		ECS:    []string{"source.ip"},
		Fields: map[string]logconfig.FieldSpec{"source.ip": {Alternatives: "src_ip"}},
	}
	record := Dict{"src_ip": "not-an-ip"}
	out := MapFields(record, Meta{}, cfg, "", "")
	_, ok := GetPath(out, "source.ip")
	assert.False(t, ok)
}

func TestMapFieldsCloudIdentityDefaults(t *testing.T) {
	cfg := &logconfig.Config{CloudProvider: "aws"}
	out := MapFields(Dict{}, Meta{}, cfg, "111122223333", "us-east-1")
	v, _ := GetPath(out, "cloud.account.id")
	assert.Equal(t, "111122223333", v)
	v, _ = GetPath(out, "cloud.region")
	assert.Equal(t, "us-east-1", v)
	v, _ = GetPath(out, "cloud.provider")
	assert.Equal(t, "aws", v)
}

func TestMapFieldsFirelensOverride(t *testing.T) {
	cfg := &logconfig.Config{}
	meta := Meta{
		ECSTaskARN:    "arn:aws:ecs:us-west-2:444455556666:task/cluster/id",
		EC2InstanceID: "i-0123",
		ContainerID:   "c1",
		ContainerName: "n1",
	}
	out := MapFields(Dict{}, meta, cfg, "", "")
	v, _ := GetPath(out, "cloud.region")
	assert.Equal(t, "us-west-2", v)
	v, _ = GetPath(out, "cloud.account.id")
	assert.Equal(t, "444455556666", v)
	v, _ = GetPath(out, "cloud.instance.id")
	assert.Equal(t, "i-0123", v)
	v, _ = GetPath(out, "container.id")
	assert.Equal(t, "c1", v)
}

func TestMapFieldsFirelensOverrideSkippedWithoutTaskARN(t *testing.T) {
	cfg := &logconfig.Config{}
	meta := Meta{
		EC2InstanceID: "i-0123",
		ContainerID:   "c1",
		ContainerName: "n1",
	}
	out := MapFields(Dict{}, meta, cfg, "", "")
	_, ok := GetPath(out, "cloud.instance.id")
	assert.False(t, ok)
	_, ok = GetPath(out, "container.id")
	assert.False(t, ok)
	_, ok = GetPath(out, "container.name")
	assert.False(t, ok)
}

func TestMapFieldsStaticAndJSONToText(t *testing.T) {
	cfg := &logconfig.Config{
		StaticECS:    []string{"observer.vendor"},
		StaticValues: map[string]interface{}{"observer.vendor": "acme"},
		JSONToText:   []string{"count"},
	}
	out := Dict{"count": float64(5)}
	out2 := MapFields(Dict{}, Meta{}, cfg, "", "")
	v, _ := GetPath(out2, "observer.vendor")
	assert.Equal(t, "acme", v)

	cleanJSONToText(out, "count")
	assert.Equal(t, "5", out["count"])
}
