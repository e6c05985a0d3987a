// Package geo wires IP geolocation and ASN enrichment to a
// MaxMind-format database, grounded on the GeoIP-backed ingest paths
// used elsewhere in the ecosystem (loki, elastic-package).
package geo

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// City is the subset of a geo lookup's result the Enricher writes to
// record[key].geo.
type City struct {
	ContinentName string
	CountryISO    string
	CountryName   string
	CityName      string
	Latitude      float64
	Longitude     float64
}

// ASN is the subset of an ASN lookup's result the Enricher writes to
// record[key].as.
type ASN struct {
	Number int
	Org    string
}

// Lookup is the geo/ASN capability the core (Enricher) consumes; it is
// supplied by the caller, not owned by this package's consumers.
type Lookup interface {
	City(ip net.IP) (*City, error)
	ASN(ip net.IP) (*ASN, error)
}

// MaxMindLookup implements Lookup against two open MaxMind DB readers
// (city and ASN databases), matching the split GeoLite2-City /
// GeoLite2-ASN distribution.
type MaxMindLookup struct {
	city *geoip2.Reader
	asn  *geoip2.Reader
}

// Open opens the city and ASN MaxMind databases at the given paths.
// Either may be empty to disable that half of enrichment.
func Open(cityPath, asnPath string) (*MaxMindLookup, error) {
	m := &MaxMindLookup{}
	if cityPath != "" {
		r, err := geoip2.Open(cityPath)
		if err != nil {
			return nil, err
		}
		m.city = r
	}
	if asnPath != "" {
		r, err := geoip2.Open(asnPath)
		if err != nil {
			return nil, err
		}
		m.asn = r
	}
	return m, nil
}

// Close releases both underlying database readers.
func (m *MaxMindLookup) Close() error {
	var err error
	if m.city != nil {
		err = m.city.Close()
	}
	if m.asn != nil {
		if e := m.asn.Close(); e != nil {
			err = e
		}
	}
	return err
}

func (m *MaxMindLookup) City(ip net.IP) (*City, error) {
	if m.city == nil {
		return nil, nil
	}
	rec, err := m.city.City(ip)
	if err != nil {
		return nil, err
	}
	if rec.City.GeoNameID == 0 && rec.Country.GeoNameID == 0 {
		return nil, nil
	}
	return &City{
		ContinentName: rec.Continent.Names["en"],
		CountryISO:    rec.Country.IsoCode,
		CountryName:   rec.Country.Names["en"],
		CityName:      rec.City.Names["en"],
		Latitude:      rec.Location.Latitude,
		Longitude:     rec.Location.Longitude,
	}, nil
}

func (m *MaxMindLookup) ASN(ip net.IP) (*ASN, error) {
	if m.asn == nil {
		return nil, nil
	}
	rec, err := m.asn.ASN(ip)
	if err != nil {
		return nil, err
	}
	if rec.AutonomousSystemNumber == 0 {
		return nil, nil
	}
	return &ASN{
		Number: int(rec.AutonomousSystemNumber),
		Org:    rec.AutonomousSystemOrganization,
	}, nil
}
