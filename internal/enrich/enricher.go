package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexanderramin/spotsurfer/internal/geo"
	"github.com/alexanderramin/spotsurfer/internal/maps"
	"github.com/alexanderramin/spotsurfer/internal/weather"
)

// DefaultMaxStops bounds route-weather lookups per request.
const DefaultMaxStops = 4

// WeatherSource fetches current conditions.
type WeatherSource interface {
	Current(ctx context.Context, location string) (*weather.Snapshot, error)
	CurrentAt(ctx context.Context, p geo.Point) (*weather.Snapshot, error)
}

// RouteSource provides traffic estimates and waypoints between two places.
type RouteSource interface {
	Traffic(ctx context.Context, origin, destination string) (*maps.TrafficSummary, error)
	RouteStops(ctx context.Context, origin, destination string, maxStops int) ([]geo.Point, error)
}

// PlaceNamer turns a coordinate into a readable name.
type PlaceNamer interface {
	Reverse(ctx context.Context, p geo.Point) (string, error)
}

// Request names the places to enrich. Empty strings mean absent.
type Request struct {
	Location string
	// LocationPoint, when set, is where Location is. Weather is then
	// fetched by coordinates.
	LocationPoint          *geo.Point
	ReservationDestination string
	Origin                 string
	Destination            string
}

// Sections holds the rendered prompt blocks. An empty field means the
// section is omitted, heading included.
type Sections struct {
	UserWeather        string
	ReservationWeather string
	RouteWeather       string
	Traffic            string
}

// Weather joins the weather sections in prompt order.
func (s Sections) Weather() string {
	var parts []string
	for _, p := range []string{s.UserWeather, s.ReservationWeather, s.RouteWeather} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Options tunes an Enricher.
type Options struct {
	MaxStops int
	Logger   *slog.Logger
}

// Enricher builds Sections for a Request.
type Enricher struct {
	weather  WeatherSource
	routes   RouteSource
	places   PlaceNamer
	maxStops int
	logger   *slog.Logger
}

// NewEnricher creates an Enricher. A nil routes source disables route
// weather and traffic; a nil places namer labels stops by coordinates.
func NewEnricher(w WeatherSource, routes RouteSource, places PlaceNamer, opts Options) *Enricher {
	if opts.MaxStops <= 0 {
		opts.MaxStops = DefaultMaxStops
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Enricher{
		weather:  w,
		routes:   routes,
		places:   places,
		maxStops: opts.MaxStops,
		logger:   opts.Logger,
	}
}

type job struct {
	req Request
	out Sections
}

// Enrich fetches every applicable section. It never fails; provider
// errors become inline notices or omitted sections.
func (e *Enricher) Enrich(ctx context.Context, req Request) Sections {
	j := &job{req: req}
	NewPipeline(e.logger, NewStage("context",
		e.userWeather,
		e.reservationWeather,
		e.routeWeather,
		e.traffic,
	)).Run(ctx, j)
	return j.out
}

func (e *Enricher) userWeather(ctx context.Context, j *job) error {
	loc := j.req.Location
	if loc == "" || e.weather == nil {
		return nil
	}
	var (
		s   *weather.Snapshot
		err error
	)
	if j.req.LocationPoint != nil {
		s, err = e.weather.CurrentAt(ctx, *j.req.LocationPoint)
	} else {
		s, err = e.weather.Current(ctx, loc)
	}
	if err != nil {
		j.out.UserWeather = fmt.Sprintf("⚠️ Weather data not available for %s.", loc)
		return fmt.Errorf("user weather: %w", err)
	}
	j.out.UserWeather = "User Location Weather:\n" + weather.Format(s, loc)
	return nil
}

func (e *Enricher) reservationWeather(ctx context.Context, j *job) error {
	dest := j.req.ReservationDestination
	if dest == "" || e.weather == nil {
		return nil
	}
	s, err := e.weather.Current(ctx, dest)
	if err != nil {
		return fmt.Errorf("reservation weather: %w", err)
	}
	j.out.ReservationWeather = "Reservation Location Weather:\n" + weather.Format(s, dest)
	return nil
}

func (e *Enricher) routeWeather(ctx context.Context, j *job) error {
	origin, dest := j.req.Origin, j.req.Destination
	if origin == "" || dest == "" || e.routes == nil || e.weather == nil {
		return nil
	}
	stops, err := e.routes.RouteStops(ctx, origin, dest, e.maxStops)
	if err != nil || len(stops) == 0 {
		j.out.RouteWeather = fmt.Sprintf("Route Weather:\n⚠️ Route weather is currently unavailable from %s to %s.", origin, dest)
		if err != nil {
			return fmt.Errorf("route stops: %w", err)
		}
		return nil
	}

	blocks := make([]string, 0, len(stops))
	for _, p := range stops {
		label := e.stopLabel(ctx, p)
		s, err := e.weather.CurrentAt(ctx, p)
		if err != nil {
			e.logger.WarnContext(ctx, "route stop weather failed", "stop", label, "error", err)
		}
		blocks = append(blocks, fmt.Sprintf("📍 **%s**\n%s", label, weather.Format(s, label)))
	}
	j.out.RouteWeather = "Route Weather:\n" + strings.Join(blocks, "\n\n")
	return nil
}

func (e *Enricher) stopLabel(ctx context.Context, p geo.Point) string {
	if e.places == nil {
		return p.String()
	}
	name, err := e.places.Reverse(ctx, p)
	if err != nil || name == "" {
		return p.String()
	}
	return name
}

func (e *Enricher) traffic(ctx context.Context, j *job) error {
	origin, dest := j.req.Origin, j.req.Destination
	if origin == "" || dest == "" || e.routes == nil {
		return nil
	}
	t, err := e.routes.Traffic(ctx, origin, dest)
	if err != nil {
		j.out.Traffic = maps.TrafficUnavailable(origin, dest)
		return fmt.Errorf("traffic: %w", err)
	}
	j.out.Traffic = maps.FormatTraffic(t)
	return nil
}
