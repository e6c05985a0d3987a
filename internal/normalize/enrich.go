package normalize

import (
	"net"

	"github.com/gravshift/esloader/internal/geo"
	"github.com/gravshift/esloader/internal/logconfig"
)

// Enrich adds geo/ASN data: for every key in cfg.GeoIP, it reads
// record[key].ip, queries lookup, and writes record[key].geo /
// record[key].as. A missing or unresolvable IP is silently skipped.
func Enrich(record Dict, cfg *logconfig.Config, lookup geo.Lookup) {
	if lookup == nil {
		return
	}
	for _, key := range cfg.GeoIP {
		ipVal, ok := GetPath(record, key+".ip")
		if !ok {
			continue
		}
		ipStr, ok := ipVal.(string)
		if !ok || ipStr == "" {
			continue
		}
		ip := net.ParseIP(ipStr)
		if ip == nil {
			continue
		}

		if city, err := lookup.City(ip); err == nil && city != nil {
			PutPath(record, key+".geo.continent_name", city.ContinentName)
			PutPath(record, key+".geo.country_iso_code", city.CountryISO)
			PutPath(record, key+".geo.country_name", city.CountryName)
			PutPath(record, key+".geo.city_name", city.CityName)
			PutPath(record, key+".geo.location.lat", city.Latitude)
			PutPath(record, key+".geo.location.lon", city.Longitude)
		}
		if asn, err := lookup.ASN(ip); err == nil && asn != nil {
			PutPath(record, key+".as.number", asn.Number)
			PutPath(record, key+".as.organization.name", asn.Org)
		}
	}
}
