package normalize

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravshift/esloader/internal/geo"
	"github.com/gravshift/esloader/internal/logconfig"
)

type fakeLookup struct{}

func (fakeLookup) City(ip net.IP) (*geo.City, error) {
	return &geo.City{CountryISO: "US", CityName: "Testville"}, nil
}

func (fakeLookup) ASN(ip net.IP) (*geo.ASN, error) {
	return &geo.ASN{Number: 64512, Org: "Example Org"}, nil
}

func TestEnrichWritesGeoAndASN(t *testing.T) {
	cfg := &logconfig.Config{GeoIP: []string{"source"}}
	record := Dict{"source": Dict{"ip": "8.8.8.8"}}
	Enrich(record, cfg, fakeLookup{})

	v, ok := GetPath(record, "source.geo.country_iso_code")
	assert.True(t, ok)
	assert.Equal(t, "US", v)

	v, ok = GetPath(record, "source.as.number")
	assert.True(t, ok)
	assert.Equal(t, 64512, v)
}

func TestEnrichSkipsMissingIP(t *testing.T) {
	cfg := &logconfig.Config{GeoIP: []string{"source"}}
	record := Dict{"source": Dict{}}
	Enrich(record, cfg, fakeLookup{})
	_, ok := GetPath(record, "source.geo")
	assert.False(t, ok)
}

func TestEnrichNilLookupNoop(t *testing.T) {
	cfg := &logconfig.Config{GeoIP: []string{"source"}}
	record := Dict{"source": Dict{"ip": "8.8.8.8"}}
	Enrich(record, cfg, nil)
	_, ok := GetPath(record, "source.geo")
	assert.False(t, ok)
}
