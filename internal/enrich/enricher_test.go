package enrich

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/alexanderramin/spotsurfer/internal/geo"
	"github.com/alexanderramin/spotsurfer/internal/maps"
	"github.com/alexanderramin/spotsurfer/internal/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWeather struct {
	mu      sync.Mutex
	known   map[string]bool
	byPoint bool
	named   []string
}

func (f *fakeWeather) Current(ctx context.Context, location string) (*weather.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.named = append(f.named, location)
	if !f.known[location] {
		return nil, errors.New("city not found")
	}
	return &weather.Snapshot{Location: location, Temperature: 30, Description: "clear sky", Condition: "Clear"}, nil
}

func (f *fakeWeather) CurrentAt(ctx context.Context, p geo.Point) (*weather.Snapshot, error) {
	if !f.byPoint {
		return nil, errors.New("down")
	}
	return &weather.Snapshot{Location: p.String(), Temperature: p.Lat}, nil
}

type fakeRoutes struct {
	stops    []geo.Point
	stopsErr error
	traffic  *maps.TrafficSummary
	maxSeen  int
}

func (f *fakeRoutes) Traffic(ctx context.Context, origin, destination string) (*maps.TrafficSummary, error) {
	if f.traffic == nil {
		return nil, errors.New("no route")
	}
	return f.traffic, nil
}

func (f *fakeRoutes) RouteStops(ctx context.Context, origin, destination string, maxStops int) ([]geo.Point, error) {
	f.maxSeen = maxStops
	return f.stops, f.stopsErr
}

type fakeNamer map[geo.Point]string

func (f fakeNamer) Reverse(ctx context.Context, p geo.Point) (string, error) {
	if n, ok := f[p]; ok {
		return n, nil
	}
	return "", errors.New("unknown")
}

func TestEnrich_NoLocationsProducesNothing(t *testing.T) {
	e := NewEnricher(&fakeWeather{}, &fakeRoutes{}, nil, Options{})

	out := e.Enrich(context.Background(), Request{})

	assert.Equal(t, Sections{}, out)
	assert.Empty(t, out.Weather())
}

func TestEnrich_UserWeather(t *testing.T) {
	w := &fakeWeather{known: map[string]bool{"Vail": true}}
	e := NewEnricher(w, nil, nil, Options{})

	out := e.Enrich(context.Background(), Request{Location: "Vail"})

	assert.True(t, strings.HasPrefix(out.UserWeather, "User Location Weather:\n🌤️ **Weather in Vail:**"))
}

func TestEnrich_UserWeatherFailureIsInlineNotice(t *testing.T) {
	e := NewEnricher(&fakeWeather{}, nil, nil, Options{})

	out := e.Enrich(context.Background(), Request{Location: "Atlantis"})

	assert.Equal(t, "⚠️ Weather data not available for Atlantis.", out.UserWeather)
}

func TestEnrich_UserWeatherByPointForUnnamedCoordinates(t *testing.T) {
	w := &fakeWeather{byPoint: true}
	e := NewEnricher(w, nil, nil, Options{})
	p := geo.Point{Lat: 39.5, Lng: -106.1}

	out := e.Enrich(context.Background(), Request{Location: "39.5,-106.1", LocationPoint: &p})

	assert.True(t, strings.HasPrefix(out.UserWeather, "User Location Weather:\n"), out.UserWeather)
	assert.Contains(t, out.UserWeather, "39.5,-106.1")
	assert.NotContains(t, out.UserWeather, "not available")
	assert.Empty(t, w.named)
}

type panickingWeather struct{}

func (panickingWeather) Current(ctx context.Context, location string) (*weather.Snapshot, error) {
	panic("provider bug")
}

func (panickingWeather) CurrentAt(ctx context.Context, p geo.Point) (*weather.Snapshot, error) {
	panic("provider bug")
}

func TestEnrich_PanickingProviderOnlyLosesItsSection(t *testing.T) {
	routes := &fakeRoutes{traffic: &maps.TrafficSummary{
		Origin: "Denver", Destination: "Vail", Distance: "97.3 mi", Duration: "1 hour 40 mins", DurationInTraffic: "1 hour 52 mins", RouteSummary: "I-70 W",
	}}
	e := NewEnricher(panickingWeather{}, routes, nil, Options{})

	var out Sections
	require.NotPanics(t, func() {
		out = e.Enrich(context.Background(), Request{Location: "Vail", Origin: "Denver", Destination: "Vail"})
	})

	assert.Empty(t, out.UserWeather)
	assert.Contains(t, out.Traffic, "1 hour 52 mins")
}

func TestPipeline_RecoversPanickingStep(t *testing.T) {
	type item struct{ done bool }
	p := NewPipeline(nil,
		NewStage("first", func(ctx context.Context, it *item) error { panic("boom") }),
		NewStage("second", func(ctx context.Context, it *item) error { it.done = true; return nil }),
	)
	it := &item{}

	require.NotPanics(t, func() { p.Run(context.Background(), it) })
	assert.True(t, it.done)
}

func TestRunStep_ReturnsPanicAsError(t *testing.T) {
	err := runStep(context.Background(), func(ctx context.Context, it *int) error { panic("boom") }, new(int))

	require.ErrorIs(t, err, ErrStepPanicked)
	assert.Contains(t, err.Error(), "boom")
}

func TestEnrich_ReservationWeatherFailureIsSilent(t *testing.T) {
	w := &fakeWeather{known: map[string]bool{"Vail": true}}
	e := NewEnricher(w, nil, nil, Options{})

	out := e.Enrich(context.Background(), Request{Location: "Vail", ReservationDestination: "Atlantis"})

	assert.NotEmpty(t, out.UserWeather)
	assert.Empty(t, out.ReservationWeather)
}

func TestEnrich_ReservationWeather(t *testing.T) {
	w := &fakeWeather{known: map[string]bool{"Lionshead Village": true}}
	e := NewEnricher(w, nil, nil, Options{})

	out := e.Enrich(context.Background(), Request{ReservationDestination: "Lionshead Village"})

	assert.True(t, strings.HasPrefix(out.ReservationWeather, "Reservation Location Weather:\n"))
	assert.Contains(t, out.ReservationWeather, "Weather in Lionshead Village")
}

func TestEnrich_RouteWeatherAndTraffic(t *testing.T) {
	a := geo.Point{Lat: 39.7, Lng: -105.2}
	b := geo.Point{Lat: 39.6, Lng: -106.0}
	routes := &fakeRoutes{
		stops: []geo.Point{a, b},
		traffic: &maps.TrafficSummary{
			Origin: "Denver", Destination: "Vail", Distance: "97 mi",
			Duration: "1 hour 38 mins", DurationInTraffic: "2 hours", RouteSummary: "I-70 W",
		},
	}
	w := &fakeWeather{byPoint: true}
	e := NewEnricher(w, routes, fakeNamer{a: "Idaho Springs, Colorado"}, Options{MaxStops: 3})

	out := e.Enrich(context.Background(), Request{Origin: "Denver", Destination: "Vail"})

	require.True(t, strings.HasPrefix(out.RouteWeather, "Route Weather:\n📍 **Idaho Springs, Colorado**\n"))
	assert.Contains(t, out.RouteWeather, "\n\n📍 **39.6,-106**\n")
	assert.Equal(t, 3, routes.maxSeen)
	assert.Contains(t, out.Traffic, "Live traffic from Denver to Vail:")
	assert.Contains(t, out.Traffic, "- Estimated time (with traffic): 2 hours")
}

func TestEnrich_RouteStopWeatherFailureIsPerStop(t *testing.T) {
	routes := &fakeRoutes{stops: []geo.Point{{Lat: 1, Lng: 2}}}
	e := NewEnricher(&fakeWeather{}, routes, nil, Options{})

	out := e.Enrich(context.Background(), Request{Origin: "A", Destination: "B"})

	assert.Equal(t, "Route Weather:\n📍 **1,2**\n⚠️ Weather information for 1,2 is currently unavailable.", out.RouteWeather)
	assert.Equal(t, "⚠️ Could not retrieve traffic info from A to B.", out.Traffic)
}

func TestEnrich_RouteStopsFailure(t *testing.T) {
	routes := &fakeRoutes{stopsErr: errors.New("quota")}
	e := NewEnricher(&fakeWeather{}, routes, nil, Options{})

	out := e.Enrich(context.Background(), Request{Origin: "A", Destination: "B"})

	assert.Contains(t, out.RouteWeather, "⚠️ Route weather is currently unavailable from A to B.")
}

func TestEnrich_OriginWithoutDestinationSkipsRouteSections(t *testing.T) {
	routes := &fakeRoutes{stops: []geo.Point{{Lat: 1, Lng: 2}}}
	e := NewEnricher(&fakeWeather{}, routes, nil, Options{})

	out := e.Enrich(context.Background(), Request{Origin: "A"})

	assert.Empty(t, out.RouteWeather)
	assert.Empty(t, out.Traffic)
}

func TestSections_WeatherOrder(t *testing.T) {
	s := Sections{UserWeather: "u", ReservationWeather: "r", RouteWeather: "w"}
	assert.Equal(t, "u\n\nr\n\nw", s.Weather())

	s = Sections{RouteWeather: "w"}
	assert.Equal(t, "w", s.Weather())
}

func TestPipeline_StagesRunInOrderAndErrorsDoNotStop(t *testing.T) {
	type item struct {
		mu    sync.Mutex
		trace []string
	}
	record := func(name string, err error) Step[item] {
		return func(ctx context.Context, it *item) error {
			it.mu.Lock()
			it.trace = append(it.trace, name)
			it.mu.Unlock()
			return err
		}
	}

	p := NewPipeline(nil,
		NewStage("first", record("a", errors.New("boom")), record("b", nil)),
		NewStage("second", record("c", nil)),
	)
	it := &item{}
	p.Run(context.Background(), it)

	require.Len(t, it.trace, 3)
	assert.ElementsMatch(t, []string{"a", "b"}, it.trace[:2])
	assert.Equal(t, "c", it.trace[2])
}
