package lookups

import (
	"context"
	"fmt"
	"net"

	"ipscope/model"

	"github.com/oschwald/maxminddb-golang"
)

// MaxMindProvider serves lookups from a local GeoLite2 City database. It
// cannot resolve the caller's own address and supplies no connection,
// currency, or threat data; those fields fall out as "N/A" downstream.
type MaxMindProvider struct {
	db *maxminddb.Reader
}

type maxMindRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Subdivisions []struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"subdivisions"`
	Country struct {
		Names   map[string]string `maxminddb:"names"`
		IsoCode string            `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	Continent struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"continent"`
	Postal struct {
		Code string `maxminddb:"code"`
	} `maxminddb:"postal"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
		TimeZone  string  `maxminddb:"time_zone"`
	} `maxminddb:"location"`
	Traits struct {
		IsAnonymousProxy bool `maxminddb:"is_anonymous_proxy"`
	} `maxminddb:"traits"`
}

func (p *MaxMindProvider) Name() string {
	return "MaxMind DB (offline)"
}

// Lookup reads the local database and shapes the record like the web API's
// document so the processing layer sees a single schema.
func (p *MaxMindProvider) Lookup(_ context.Context, ip string) (model.RawData, error) {
	if ip == "" {
		return nil, fmt.Errorf("the offline database cannot determine your own public address")
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("invalid IP address format: %s", ip)
	}

	var record maxMindRecord
	if err := p.db.Lookup(parsed, &record); err != nil {
		return nil, fmt.Errorf("database lookup failed for %s: %w", ip, err)
	}

	raw := model.RawData{
		"ip_address":   ip,
		"city":         record.City.Names["en"],
		"country":      record.Country.Names["en"],
		"country_code": record.Country.IsoCode,
		"continent":    record.Continent.Names["en"],
		"postal_code":  record.Postal.Code,
		"latitude":     record.Location.Latitude,
		"longitude":    record.Location.Longitude,
		"timezone": map[string]any{
			"name": record.Location.TimeZone,
		},
		"security": map[string]any{
			"is_proxy": record.Traits.IsAnonymousProxy,
		},
	}
	if len(record.Subdivisions) > 0 {
		raw["region"] = record.Subdivisions[0].Names["en"]
	}
	return raw, nil
}

// TestConnection confirms the database answers queries at all.
func (p *MaxMindProvider) TestConnection(context.Context) error {
	var record maxMindRecord
	if err := p.db.Lookup(net.ParseIP("8.8.8.8"), &record); err != nil {
		return fmt.Errorf("database probe failed: %w", err)
	}
	return nil
}
