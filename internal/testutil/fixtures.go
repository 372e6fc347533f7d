package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// WeatherJSON builds an OpenWeatherMap current-weather payload for name.
func WeatherJSON(name string, temp float64) string {
	return fmt.Sprintf(`{
  "coord": {"lon": -106.3742, "lat": 39.6403},
  "weather": [{"id": 600, "main": "Snow", "description": "light snow"}],
  "main": {"temp": %g, "feels_like": %g, "temp_min": %g, "temp_max": %g, "pressure": 1018, "humidity": 86},
  "visibility": 8000,
  "wind": {"speed": 6.9, "deg": 270},
  "clouds": {"all": 90},
  "sys": {"sunrise": 1700000000, "sunset": 1700036000},
  "timezone": -25200,
  "name": %q
}`, temp, temp-7, temp-3, temp+3, name)
}

// DirectionsJSON builds a Google Directions payload with n steps.
func DirectionsJSON(n int) string {
	steps := make([]string, n)
	for i := range steps {
		steps[i] = fmt.Sprintf(`{"end_location": {"lat": %g, "lng": %g}}`, 39.7+float64(i)*0.01, -105.0-float64(i)*0.3)
	}
	return `{"status": "OK", "routes": [{"summary": "I-70 W", "legs": [{
  "distance": {"text": "97.4 mi", "value": 156700},
  "duration": {"text": "1 hour 38 mins", "value": 5880},
  "duration_in_traffic": {"text": "1 hour 52 mins", "value": 6720},
  "steps": [` + strings.Join(steps, ",") + `]}]}]}`
}

// Providers is one httptest server standing in for the weather,
// directions and Nominatim APIs.
type Providers struct {
	*httptest.Server

	WeatherCalls    atomic.Int32
	DirectionsCalls atomic.Int32
	GeocodeCalls    atomic.Int32

	// FailWeather makes every weather request answer 503.
	FailWeather atomic.Bool
}

// NewProviders starts a Providers server that is closed with the test.
func NewProviders(t *testing.T) *Providers {
	t.Helper()
	p := &Providers{}
	mux := http.NewServeMux()
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		p.WeatherCalls.Add(1)
		if p.FailWeather.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		name := r.URL.Query().Get("q")
		if name == "" {
			name = "Vail"
		}
		w.Write([]byte(WeatherJSON(name, 28.4)))
	})
	mux.HandleFunc("/directions", func(w http.ResponseWriter, r *http.Request) {
		p.DirectionsCalls.Add(1)
		w.Write([]byte(DirectionsJSON(8)))
	})
	mux.HandleFunc("/reverse", func(w http.ResponseWriter, r *http.Request) {
		p.GeocodeCalls.Add(1)
		w.Write([]byte(`{"display_name": "Vail, Eagle County, Colorado, United States",
			"address": {"town": "Vail", "state": "Colorado"}}`))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		p.GeocodeCalls.Add(1)
		q := r.URL.Query().Get("q")
		json.NewEncoder(w).Encode([]map[string]string{{"display_name": q}})
	})
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Close)
	return p
}

// WeatherURL is the base URL for weather.Config.
func (p *Providers) WeatherURL() string { return p.URL + "/weather" }

// DirectionsURL is the base URL for maps.NewDirections.
func (p *Providers) DirectionsURL() string { return p.URL + "/directions" }

// NominatimURL is the base URL for maps.NewNominatimGeocoder.
func (p *Providers) NominatimURL() string { return p.URL }
