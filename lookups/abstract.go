package lookups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ipscope/config"
	"ipscope/model"
)

// AbstractProvider queries the Abstract API IP geolocation service over
// HTTPS, keyed by an API key.
type AbstractProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAbstractProvider builds the web-based provider from the application
// config. The API key is required.
func NewAbstractProvider(cfg *config.Config) (*AbstractProvider, error) {
	if cfg.GeoIP.APIKey == "" {
		return nil, fmt.Errorf("no API key configured: set geoip.api_key in the config file or the ABSTRACT_API_KEY environment variable")
	}
	return &AbstractProvider{
		baseURL: cfg.GeoIP.BaseURL,
		apiKey:  cfg.GeoIP.APIKey,
		client: &http.Client{
			Timeout: time.Duration(cfg.GeoIP.TimeoutSeconds) * time.Second,
		},
	}, nil
}

func (p *AbstractProvider) Name() string {
	return "Abstract API (web-based)"
}

// Lookup fetches the geolocation document for ip, or for the caller's own
// public address when ip is empty. A transport failure is retried once; a
// non-success status is not.
func (p *AbstractProvider) Lookup(ctx context.Context, ip string) (model.RawData, error) {
	reqURL := p.requestURL(ip)

	resp, err := p.get(ctx, reqURL)
	if err != nil {
		// One retry on a transport error. Status errors are final.
		resp, err = p.get(ctx, reqURL)
	}
	if err != nil {
		return nil, fmt.Errorf("could not reach the geolocation API: %w", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode, ip); err != nil {
		return nil, err
	}

	var raw model.RawData
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("could not decode geolocation response: %w", err)
	}
	return raw, nil
}

// TestConnection verifies the API is reachable and the key is accepted,
// using a shorter deadline than a full lookup.
func (p *AbstractProvider) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := p.get(ctx, p.requestURL(""))
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	defer resp.Body.Close()

	return statusError(resp.StatusCode, "")
}

func (p *AbstractProvider) requestURL(ip string) string {
	q := url.Values{}
	q.Set("api_key", p.apiKey)
	if ip != "" {
		q.Set("ip_address", ip)
	}
	return p.baseURL + "?" + q.Encode()
}

func (p *AbstractProvider) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	return p.client.Do(req)
}

// statusError maps the API's status codes to caller-facing errors.
func statusError(code int, ip string) error {
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("invalid API key, please check your credentials")
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("the API rejected the address %q as invalid", ip)
	case http.StatusTooManyRequests:
		return fmt.Errorf("API rate limit exceeded, please try again later")
	default:
		return fmt.Errorf("the API returned status code %d", code)
	}
}
