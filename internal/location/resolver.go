// Package location reconciles the places a request can carry (explicit
// location, device coordinates, text mentions, reservation) into the
// single location and route used for enrichment.
package location

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alexanderramin/spotsurfer/internal/geo"
	"github.com/alexanderramin/spotsurfer/internal/intent"
)

// Geocoder is the subset of maps.Geocoder the resolver needs.
type Geocoder interface {
	Reverse(ctx context.Context, p geo.Point) (string, error)
	Normalize(ctx context.Context, place string) (string, error)
}

// Input carries everything a request says about place.
type Input struct {
	Message                string
	UserLocation           string
	Coordinates            *geo.Point
	ReservationDestination string
}

// Resolution is the outcome of resolving an Input. Empty strings mean absent.
type Resolution struct {
	// Location is the single place weather is reported for.
	Location string
	// UserLocation is the explicit location or the name of the coordinates.
	UserLocation string
	// InferredLocation is the weather subject named in the message.
	InferredLocation string
	Origin           string
	Destination      string
	// LocationPoint is set when Location is coordinates no geocoder could
	// name, so weather can be looked up by point instead of by text.
	LocationPoint *geo.Point
}

// HasRoute reports whether both ends of a route are known.
func (r Resolution) HasRoute() bool {
	return r.Origin != "" && r.Destination != ""
}

// Resolver applies the precedence rules. It never fails: every lookup
// error degrades to the unresolved input.
type Resolver struct {
	geocoder Geocoder
	logger   *slog.Logger
}

// NewResolver creates a Resolver. A nil geocoder skips reverse lookups and
// address normalization.
func NewResolver(geocoder Geocoder, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{geocoder: geocoder, logger: logger}
}

// Resolve computes the effective location and route for in.
func (r *Resolver) Resolve(ctx context.Context, in Input) Resolution {
	var res Resolution

	explicit := strings.TrimSpace(in.UserLocation)
	res.UserLocation = explicit
	named := true
	if explicit == "" && in.Coordinates != nil {
		res.UserLocation, named = r.namePoint(ctx, *in.Coordinates)
	}

	res.InferredLocation = intent.WeatherLocation(in.Message)
	switch {
	case explicit != "":
		res.Location = explicit
	case res.InferredLocation != "":
		res.Location = res.InferredLocation
	default:
		res.Location = res.UserLocation
		if !named {
			p := *in.Coordinates
			res.LocationPoint = &p
		}
	}

	route := intent.ExtractRoute(in.Message)
	res.Origin, res.Destination = route.Origin, route.Destination
	if route.OriginIsSelf {
		res.Origin = res.UserLocation
	}

	reservationDest := strings.TrimSpace(in.ReservationDestination)
	if res.Origin == "" && res.UserLocation != "" && (res.Destination != "" || reservationDest != "") {
		res.Origin = res.UserLocation
	}
	if res.Destination == "" && reservationDest != "" {
		res.Destination = reservationDest
	}

	res.Origin = r.normalize(ctx, res.Origin)
	res.Destination = r.normalize(ctx, res.Destination)
	return res
}

// NamePoint reverse geocodes p, falling back to the literal "lat,lng".
func (r *Resolver) NamePoint(ctx context.Context, p geo.Point) string {
	name, _ := r.namePoint(ctx, p)
	return name
}

// namePoint also reports whether a real name was found.
func (r *Resolver) namePoint(ctx context.Context, p geo.Point) (string, bool) {
	if r.geocoder == nil {
		return p.String(), false
	}
	name, err := r.geocoder.Reverse(ctx, p)
	if err != nil || name == "" {
		r.logger.Warn("reverse geocode failed, using coordinates", "point", p.String(), "error", err)
		return p.String(), false
	}
	return name, true
}

func (r *Resolver) normalize(ctx context.Context, place string) string {
	if place == "" || r.geocoder == nil {
		return place
	}
	addr, err := r.geocoder.Normalize(ctx, place)
	if err != nil || addr == "" {
		r.logger.Warn("address normalization failed", "place", place, "error", err)
		return place
	}
	return addr
}
