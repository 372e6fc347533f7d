package maps

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/alexanderramin/spotsurfer/internal/geo"
	"github.com/alexanderramin/spotsurfer/internal/provider"
)

// Geocoder converts between coordinates, free-form place strings and
// canonical addresses.
type Geocoder interface {
	// Reverse names the place at p.
	Reverse(ctx context.Context, p geo.Point) (string, error)
	// Normalize returns the canonical address for a free-form place.
	Normalize(ctx context.Context, place string) (string, error)
}

// GoogleGeocoder uses the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey  string
	baseURL string
	http    *provider.Client
	logger  *slog.Logger
}

// NewGoogleGeocoder creates a GoogleGeocoder. An empty baseURL uses the
// public endpoint.
func NewGoogleGeocoder(apiKey, baseURL string, httpClient *provider.Client, logger *slog.Logger) *GoogleGeocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodeURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GoogleGeocoder{apiKey: apiKey, baseURL: baseURL, http: httpClient, logger: logger}
}

type googleGeocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

func (g *GoogleGeocoder) Reverse(ctx context.Context, p geo.Point) (string, error) {
	params := url.Values{}
	params.Set("latlng", strconv.FormatFloat(p.Lat, 'f', -1, 64)+","+strconv.FormatFloat(p.Lng, 'f', -1, 64))
	return g.lookup(ctx, p.String(), params)
}

func (g *GoogleGeocoder) Normalize(ctx context.Context, place string) (string, error) {
	params := url.Values{}
	params.Set("address", place)
	return g.lookup(ctx, place, params)
}

func (g *GoogleGeocoder) lookup(ctx context.Context, query string, params url.Values) (string, error) {
	params.Set("key", g.apiKey)

	var resp googleGeocodeResponse
	if err := g.http.GetJSON(ctx, g.baseURL, params, &resp); err != nil {
		g.logger.Warn("geocode request failed", "query", query, "error", err)
		return "", fmt.Errorf("geocoding %q: %w", query, err)
	}
	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return "", fmt.Errorf("geocoding %q: %w", query, provider.ErrNoData)
	default:
		return "", fmt.Errorf("geocoding %q: %w: status %s %s", query, provider.ErrUnavailable, resp.Status, resp.ErrorMessage)
	}
	if len(resp.Results) == 0 || resp.Results[0].FormattedAddress == "" {
		return "", fmt.Errorf("geocoding %q: %w", query, provider.ErrNoData)
	}
	return resp.Results[0].FormattedAddress, nil
}

// NominatimGeocoder uses the OpenStreetMap Nominatim search and reverse
// endpoints. Nominatim's usage policy asks for at most one request per
// second and an identifying User-Agent, both of which are the caller's
// provider.Client settings.
type NominatimGeocoder struct {
	baseURL string
	http    *provider.Client
	logger  *slog.Logger
}

// DefaultNominatimURL is the public Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NewNominatimGeocoder creates a NominatimGeocoder.
func NewNominatimGeocoder(baseURL string, httpClient *provider.Client, logger *slog.Logger) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NominatimGeocoder{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, logger: logger}
}

type nominatimPlace struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
	} `json:"address"`
	Error string `json:"error"`
}

// locality prefers "City, State" over the long display name.
func (p nominatimPlace) locality() string {
	city := p.Address.City
	if city == "" {
		city = p.Address.Town
	}
	if city == "" {
		city = p.Address.Village
	}
	switch {
	case city != "" && p.Address.State != "":
		return city + ", " + p.Address.State
	case city != "":
		return city
	default:
		return p.DisplayName
	}
}

func (n *NominatimGeocoder) Reverse(ctx context.Context, p geo.Point) (string, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(p.Lng, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("accept-language", "en")

	var place nominatimPlace
	if err := n.http.GetJSON(ctx, n.baseURL+"/reverse", params, &place); err != nil {
		n.logger.Warn("nominatim reverse failed", "point", p.String(), "error", err)
		return "", fmt.Errorf("reverse geocoding %s: %w", p, err)
	}
	if place.Error != "" || place.locality() == "" {
		return "", fmt.Errorf("reverse geocoding %s: %w", p, provider.ErrNoData)
	}
	return place.locality(), nil
}

func (n *NominatimGeocoder) Normalize(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("accept-language", "en")

	var results []nominatimPlace
	if err := n.http.GetJSON(ctx, n.baseURL+"/search", params, &results); err != nil {
		n.logger.Warn("nominatim search failed", "query", query, "error", err)
		return "", fmt.Errorf("geocoding %q: %w", query, err)
	}
	if len(results) == 0 || results[0].DisplayName == "" {
		return "", fmt.Errorf("geocoding %q: %w", query, provider.ErrNoData)
	}
	return results[0].DisplayName, nil
}
