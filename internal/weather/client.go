package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultBaseURL    = "https://api.open-meteo.com/v1/forecast"
	DefaultGeocodeURL = "https://geocoding-api.open-meteo.com/v1/search"

	searchCount   = 10
	searchCacheSz = 128
)

// Client talks to the Open-Meteo forecast and geocoding APIs.
type Client struct {
	http       *http.Client
	baseURL    string
	geocodeURL string
	cache      *lru.Cache[string, []Location]
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithBaseURL overrides the forecast endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithGeocodeURL overrides the geocoding endpoint.
func WithGeocodeURL(u string) ClientOption {
	return func(c *Client) { c.geocodeURL = u }
}

// WithClientLogger sets the logger for request failures.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client with a small cache of geocoding results.
func NewClient(opts ...ClientOption) *Client {
	cache, _ := lru.New[string, []Location](searchCacheSz)
	c := &Client{
		http:       http.DefaultClient,
		baseURL:    DefaultBaseURL,
		geocodeURL: DefaultGeocodeURL,
		cache:      cache,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
		Time        string  `json:"time"`
	} `json:"current_weather"`
}

// Current fetches current conditions at loc.
func (c *Client) Current(ctx context.Context, loc Location) (Conditions, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Lon, 'f', 4, 64))
	q.Set("current_weather", "true")

	var resp forecastResponse
	if err := c.getJSON(ctx, c.baseURL, q, &resp); err != nil {
		return Conditions{}, fmt.Errorf("fetch weather for %s: %w", loc.Name, err)
	}
	cw := resp.CurrentWeather
	observed, _ := time.Parse("2006-01-02T15:04", cw.Time)
	return Conditions{
		Temperature: cw.Temperature,
		WindSpeed:   cw.WindSpeed,
		Code:        cw.WeatherCode,
		Description: Describe(cw.WeatherCode),
		ObservedAt:  observed,
	}, nil
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

// SearchCities resolves query to candidate locations, closest names first.
// A query with no matches returns an empty slice and no error.
func (c *Client) SearchCities(ctx context.Context, query string) ([]Location, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return nil, nil
	}
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	q := url.Values{}
	q.Set("name", query)
	q.Set("count", strconv.Itoa(searchCount))
	q.Set("language", "en")
	q.Set("format", "json")

	var resp geocodeResponse
	if err := c.getJSON(ctx, c.geocodeURL, q, &resp); err != nil {
		return nil, fmt.Errorf("search cities %q: %w", query, err)
	}

	type ranked struct {
		loc  Location
		dist int
	}
	rs := make([]ranked, 0, len(resp.Results))
	for _, r := range resp.Results {
		name := r.Name
		for _, part := range []string{r.Admin1, r.Country} {
			if part != "" && part != r.Name {
				name += ", " + part
			}
		}
		rs = append(rs, ranked{
			loc:  Location{Name: name, Lat: r.Latitude, Lon: r.Longitude},
			dist: levenshtein.ComputeDistance(key, strings.ToLower(r.Name)),
		})
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].dist < rs[j].dist })

	out := make([]Location, len(rs))
	for i, r := range rs {
		out[i] = r.loc
	}
	c.cache.Add(key, out)
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, base string, q url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("weather api error",
			slog.String("url", base),
			slog.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Describe converts a WMO weather code to text.
func Describe(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code == 1:
		return "Mainly clear"
	case code == 2:
		return "Partly cloudy"
	case code == 3:
		return "Overcast"
	case code == 45 || code == 48:
		return "Fog"
	case code == 51 || code == 53 || code == 55:
		return "Drizzle"
	case code == 56 || code == 57:
		return "Freezing drizzle"
	case code == 61 || code == 63 || code == 65:
		return "Rain"
	case code == 66 || code == 67:
		return "Freezing rain"
	case code == 71 || code == 73 || code == 75:
		return "Snow"
	case code == 77:
		return "Snow grains"
	case code >= 80 && code <= 82:
		return "Rain showers"
	case code == 85 || code == 86:
		return "Snow showers"
	case code == 95:
		return "Thunderstorm"
	case code == 96 || code == 99:
		return "Thunderstorm with hail"
	}
	return "Unknown"
}
