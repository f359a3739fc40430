package lookups

import (
	"context"
	"fmt"

	"ipscope/config"
	"ipscope/model"

	"github.com/oschwald/maxminddb-golang"
	"github.com/sirupsen/logrus"
)

var provider Provider

// Provider defines the interface for any geolocation source. An empty ip
// asks for the caller's own public address, where the source supports it.
type Provider interface {
	Lookup(ctx context.Context, ip string) (model.RawData, error)
	TestConnection(ctx context.Context) error
	Name() string
}

// InitGeoIP initializes the geolocation provider based on the application
// config.
func InitGeoIP(cfg *config.Config) error {
	switch cfg.GeoIP.Provider {
	case "abstract":
		p, err := NewAbstractProvider(cfg)
		if err != nil {
			return err
		}
		provider = p
	case "maxmind":
		db, err := maxminddb.Open(cfg.GeoIP.DatabasePath)
		if err != nil {
			return fmt.Errorf("could not open maxmind db at %s: %w", cfg.GeoIP.DatabasePath, err)
		}
		provider = &MaxMindProvider{db: db}
	default:
		return fmt.Errorf("unknown geoip provider '%s' specified in config. Use 'abstract' or 'maxmind'", cfg.GeoIP.Provider)
	}
	logrus.WithField("provider", provider.Name()).Info("GeoIP provider initialized")
	return nil
}

// SetProvider swaps the active provider. Tests use this to install fakes.
func SetProvider(p Provider) {
	provider = p
}

// LookupIP performs a geolocation lookup using the configured provider.
func LookupIP(ctx context.Context, ip string) (model.RawData, error) {
	if provider == nil {
		return nil, fmt.Errorf("geoip provider has not been initialized")
	}
	return provider.Lookup(ctx, ip)
}

// TestConnection probes the configured provider.
func TestConnection(ctx context.Context) error {
	if provider == nil {
		return fmt.Errorf("geoip provider has not been initialized")
	}
	return provider.TestConnection(ctx)
}
