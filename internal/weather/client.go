// Package weather fetches current conditions from OpenWeatherMap.
package weather

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/spotsurfer/internal/geo"
	"github.com/alexanderramin/spotsurfer/internal/provider"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultBaseURL is the OpenWeatherMap current-weather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Config holds OpenWeatherMap settings.
type Config struct {
	APIKey    string
	BaseURL   string
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultConfig caches up to 256 snapshots for ten minutes.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		CacheSize: 256,
		CacheTTL:  10 * time.Minute,
	}
}

// Client looks up current weather by place name or coordinates.
type Client struct {
	cfg    Config
	http   *provider.Client
	cache  *expirable.LRU[string, *Snapshot]
	logger *slog.Logger
}

// NewClient creates a Client. A zero CacheSize disables caching.
func NewClient(cfg Config, httpClient *provider.Client, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Client{cfg: cfg, http: httpClient, logger: logger}
	if cfg.CacheSize > 0 {
		c.cache = expirable.NewLRU[string, *Snapshot](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return c
}

// Current returns the weather for a named place.
func (c *Client) Current(ctx context.Context, location string) (*Snapshot, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("weather lookup: %w", provider.ErrNoData)
	}
	params := url.Values{}
	params.Set("q", location)
	return c.fetch(ctx, "q:"+strings.ToLower(location), location, params)
}

// CurrentAt returns the weather at a coordinate.
func (c *Client) CurrentAt(ctx context.Context, p geo.Point) (*Snapshot, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(p.Lat, 'f', 4, 64))
	params.Set("lon", strconv.FormatFloat(p.Lng, 'f', 4, 64))
	return c.fetch(ctx, "p:"+params.Encode(), p.String(), params)
}

func (c *Client) fetch(ctx context.Context, key, label string, params url.Values) (*Snapshot, error) {
	if c.cache != nil {
		if s, ok := c.cache.Get(key); ok {
			return s, nil
		}
	}

	params.Set("appid", c.cfg.APIKey)
	params.Set("units", "imperial")

	var resp owmResponse
	if err := c.http.GetJSON(ctx, c.cfg.BaseURL, params, &resp); err != nil {
		c.logger.Warn("weather request failed", "location", label, "error", err)
		return nil, fmt.Errorf("weather for %s: %w", label, err)
	}
	if resp.Main == nil || len(resp.Weather) == 0 {
		c.logger.Warn("incomplete weather data", "location", label)
		return nil, fmt.Errorf("weather for %s: %w", label, provider.ErrNoData)
	}

	s := resp.snapshot(label)
	if c.cache != nil {
		c.cache.Add(key, s)
	}
	return s, nil
}

type owmResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
		Gust  float64 `json:"gust"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	Name     string `json:"name"`
}

func (r owmResponse) snapshot(label string) *Snapshot {
	s := &Snapshot{
		Location:    label,
		Temperature: r.Main.Temp,
		FeelsLike:   r.Main.FeelsLike,
		High:        r.Main.TempMax,
		Low:         r.Main.TempMin,
		Description: r.Weather[0].Description,
		Condition:   r.Weather[0].Main,
		Humidity:    r.Main.Humidity,
		WindSpeed:   r.Wind.Speed,
		WindDeg:     r.Wind.Deg,
		WindGust:    r.Wind.Gust,
		CloudCover:  r.Clouds.All,
		Visibility:  r.Visibility,
		Pressure:    r.Main.Pressure,
		UTCOffset:   r.Timezone,
		Lat:         r.Coord.Lat,
		Lng:         r.Coord.Lon,
	}
	if s.Description == "" {
		s.Description = "No description"
	}
	if r.Sys.Sunrise > 0 {
		s.Sunrise = time.Unix(r.Sys.Sunrise, 0).UTC()
	}
	if r.Sys.Sunset > 0 {
		s.Sunset = time.Unix(r.Sys.Sunset, 0).UTC()
	}
	return s
}
