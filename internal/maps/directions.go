// Package maps wraps the Google Maps Directions and Geocoding APIs and the
// OpenStreetMap Nominatim geocoder.
package maps

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alexanderramin/spotsurfer/internal/geo"
	"github.com/alexanderramin/spotsurfer/internal/provider"
)

const (
	DefaultDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"
	DefaultGeocodeURL    = "https://maps.googleapis.com/maps/api/geocode/json"
)

// TrafficSummary is the live-traffic estimate for one route.
type TrafficSummary struct {
	Origin            string
	Destination       string
	Distance          string
	Duration          string
	DurationInTraffic string
	RouteSummary      string
}

// Directions queries the Google Directions API.
type Directions struct {
	apiKey  string
	baseURL string
	http    *provider.Client
	logger  *slog.Logger
}

// NewDirections creates a Directions client. An empty baseURL uses the
// public endpoint.
func NewDirections(apiKey, baseURL string, httpClient *provider.Client, logger *slog.Logger) *Directions {
	if baseURL == "" {
		baseURL = DefaultDirectionsURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Directions{apiKey: apiKey, baseURL: baseURL, http: httpClient, logger: logger}
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		Summary string `json:"summary"`
		Legs    []struct {
			Distance          textValue  `json:"distance"`
			Duration          textValue  `json:"duration"`
			DurationInTraffic *textValue `json:"duration_in_traffic"`
			Steps             []struct {
				EndLocation latLng `json:"end_location"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (d *Directions) route(ctx context.Context, origin, destination string) (*directionsResponse, error) {
	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("departure_time", "now")
	params.Set("key", d.apiKey)

	var resp directionsResponse
	if err := d.http.GetJSON(ctx, d.baseURL, params, &resp); err != nil {
		return nil, fmt.Errorf("directions %s to %s: %w", origin, destination, err)
	}
	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, fmt.Errorf("directions %s to %s: %w", origin, destination, provider.ErrNoData)
	default:
		return nil, fmt.Errorf("directions %s to %s: %w: status %s %s",
			origin, destination, provider.ErrUnavailable, resp.Status, resp.ErrorMessage)
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return nil, fmt.Errorf("directions %s to %s: %w", origin, destination, provider.ErrNoData)
	}
	return &resp, nil
}

// Traffic returns distance and duration estimates for the first route.
// The in-traffic duration falls back to the normal duration when absent.
func (d *Directions) Traffic(ctx context.Context, origin, destination string) (*TrafficSummary, error) {
	resp, err := d.route(ctx, origin, destination)
	if err != nil {
		d.logger.Warn("traffic lookup failed", "origin", origin, "destination", destination, "error", err)
		return nil, err
	}
	r := resp.Routes[0]
	leg := r.Legs[0]

	t := &TrafficSummary{
		Origin:            origin,
		Destination:       destination,
		Distance:          leg.Distance.Text,
		Duration:          leg.Duration.Text,
		DurationInTraffic: leg.Duration.Text,
		RouteSummary:      r.Summary,
	}
	if leg.DurationInTraffic != nil && leg.DurationInTraffic.Text != "" {
		t.DurationInTraffic = leg.DurationInTraffic.Text
	}
	if t.RouteSummary == "" {
		t.RouteSummary = "Route summary not available"
	}
	return t, nil
}

// RouteStops samples at most maxStops step end points along the first
// route, taking every stride-th step where stride = max(1, steps/maxStops).
func (d *Directions) RouteStops(ctx context.Context, origin, destination string, maxStops int) ([]geo.Point, error) {
	resp, err := d.route(ctx, origin, destination)
	if err != nil {
		d.logger.Warn("route stops lookup failed", "origin", origin, "destination", destination, "error", err)
		return nil, err
	}
	steps := resp.Routes[0].Legs[0].Steps
	return sampleStops(len(steps), maxStops, func(i int) geo.Point {
		return geo.Point{Lat: steps[i].EndLocation.Lat, Lng: steps[i].EndLocation.Lng}
	}), nil
}

func sampleStops(n, maxStops int, at func(int) geo.Point) []geo.Point {
	if n == 0 || maxStops <= 0 {
		return nil
	}
	stride := n / maxStops
	if stride < 1 {
		stride = 1
	}
	stops := make([]geo.Point, 0, maxStops)
	for i := 0; i < n && len(stops) < maxStops; i += stride {
		stops = append(stops, at(i))
	}
	return stops
}

// FormatTraffic renders t as a prompt block.
func FormatTraffic(t *TrafficSummary) string {
	if t == nil {
		return "Live traffic data is currently unavailable."
	}
	return fmt.Sprintf("Live traffic from %s to %s:\n"+
		"- Distance: %s\n"+
		"- Estimated time (normal): %s\n"+
		"- Estimated time (with traffic): %s\n"+
		"- Route: %s",
		t.Origin, t.Destination, t.Distance, t.Duration, t.DurationInTraffic, t.RouteSummary)
}

// TrafficUnavailable is the notice shown when no estimate could be fetched.
func TrafficUnavailable(origin, destination string) string {
	return fmt.Sprintf("⚠️ Could not retrieve traffic info from %s to %s.", origin, destination)
}
