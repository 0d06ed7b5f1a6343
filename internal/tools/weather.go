package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oceanai/sagarmitra/internal/httpkit"
)

const weatherDefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// beaufortBand maps a wind speed range (m/s) to a fishing advisory.
type beaufortBand struct {
	low, high float64
	label     string
	desc      string
}

var beaufortBands = []beaufortBand{
	{0, 0.2, "शांत (Calm)", "Mirror-smooth sea"},
	{0.3, 1.5, "हल्की हवा (Light air)", "Small ripples"},
	{1.6, 3.3, "हल्की बयार (Light breeze)", "Small wavelets"},
	{3.4, 5.4, "मंद बयार (Gentle breeze)", "Large wavelets, some crests"},
	{5.5, 7.9, "तेज़ बयार (Moderate breeze)", "Small waves, frequent whitecaps"},
	{8.0, 10.7, "ताज़ा हवा (Fresh breeze)", "Moderate waves — be cautious!"},
	{10.8, 13.8, "तेज़ हवा (Strong breeze)", "Large waves — avoid deep sea!"},
	{13.9, 17.1, "भारी हवा (Near gale)", "⚠️ Dangerous — return to shore!"},
	{17.2, 100, "तूफ़ान (Gale+)", "🚨 DANGER — DO NOT GO TO SEA!"},
}

// windAdvisory returns a fishing-relevant wind advisory for a speed in m/s.
func windAdvisory(speedMS float64) string {
	for _, b := range beaufortBands {
		if speedMS >= b.low && speedMS <= b.high {
			return fmt.Sprintf("%s — %s", b.label, b.desc)
		}
	}
	return "Unknown"
}

// WeatherClient fetches current conditions and short-range forecasts
// from the OpenWeatherMap free tier.
type WeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// WeatherOption configures a WeatherClient.
type WeatherOption func(*WeatherClient)

// WithWeatherBaseURL overrides the API base URL. Used in tests.
func WithWeatherBaseURL(url string) WeatherOption {
	return func(c *WeatherClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// NewWeatherClient creates an OpenWeatherMap client.
func NewWeatherClient(apiKey string, logger *slog.Logger, opts ...WeatherOption) *WeatherClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &WeatherClient{
		apiKey:     apiKey,
		baseURL:    weatherDefaultBaseURL,
		logger:     logger.With("component", "weather"),
		httpClient: httpkit.NewClient(httpkit.WithTimeout(10 * time.Second)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OpenWeatherMap wire types (subset of the response fields we use).

type owmCurrent struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Rain struct {
		OneH float64 `json:"1h"`
	} `json:"rain"`
	Visibility int `json:"visibility"`
}

type owmForecast struct {
	List []owmForecastEntry `json:"list"`
}

type owmForecastEntry struct {
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Rain struct {
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
}

func (c *WeatherClient) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody := httpkit.ReadErrorBody(resp.Body, 2048)
		return fmt.Errorf("openweathermap %s: status %d: %s", path, resp.StatusCode, errBody)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Report fetches current conditions plus the next four 3-hour forecast
// slots and formats them for the model.
func (c *WeatherClient) Report(ctx context.Context, lat, lon float64, label string) (string, error) {
	if label == "" {
		label = fmt.Sprintf("%.2f°N, %.2f°E", lat, lon)
	}

	coords := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}

	var current owmCurrent
	if err := c.get(ctx, "/weather", coords, &current); err != nil {
		return "", err
	}

	forecastParams := url.Values{
		"lat": coords["lat"],
		"lon": coords["lon"],
		"cnt": {"4"},
	}
	var forecast owmForecast
	if err := c.get(ctx, "/forecast", forecastParams, &forecast); err != nil {
		return "", err
	}

	description := "Unknown"
	if len(current.Weather) > 0 {
		description = titleCase(current.Weather[0].Description)
	}
	visibility := float64(current.Visibility) / 1000
	if current.Visibility == 0 {
		visibility = 10
	}

	lines := []string{
		fmt.Sprintf("📍 **%s** — Current Conditions", label),
		fmt.Sprintf("  🌤️ %s", description),
		fmt.Sprintf("  🌡️ Temperature: %.0f°C | Humidity: %d%%", current.Main.Temp, current.Main.Humidity),
		fmt.Sprintf("  💨 Wind: %.1f m/s (%d°) — %s", current.Wind.Speed, current.Wind.Deg, windAdvisory(current.Wind.Speed)),
		fmt.Sprintf("  ☁️ Cloud cover: %d%% | Visibility: %.1f km", current.Clouds.All, visibility),
	}
	if current.Rain.OneH > 0 {
		lines = append(lines, fmt.Sprintf("  🌧️ Rain (last 1h): %g mm", current.Rain.OneH))
	}

	lines = append(lines, "", "📅 **Next 12-Hour Forecast**:")
	for _, entry := range forecast.List {
		desc := "Unknown"
		if len(entry.Weather) > 0 {
			desc = titleCase(entry.Weather[0].Description)
		}
		hhmm := entry.DtTxt
		if len(hhmm) >= 16 {
			hhmm = hhmm[11:16]
		}
		line := fmt.Sprintf("  %s — %s, %.0f°C, Wind %.1fm/s (%s)",
			hhmm, desc, entry.Main.Temp, entry.Wind.Speed, windAdvisory(entry.Wind.Speed))
		if entry.Rain.ThreeH > 0 {
			line += fmt.Sprintf(", Rain %gmm", entry.Rain.ThreeH)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}

// titleCase capitalizes each word, matching the upstream description style.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (r *Registry) handleGetWeather(ctx context.Context, args map[string]any) (string, error) {
	if r.weather == nil {
		return "⚠️ Weather API not configured.", nil
	}

	lat, latOK := floatArg(args, "latitude")
	lon, lonOK := floatArg(args, "longitude")
	if !latOK || !lonOK {
		return "", fmt.Errorf("latitude and longitude are required")
	}
	label, _ := args["location_name"].(string)

	report, err := r.weather.Report(ctx, lat, lon, label)
	if err != nil {
		// Degrade to a model-visible notice rather than failing the turn.
		r.logger.Warn("weather fetch failed", "error", err)
		return fmt.Sprintf("⚠️ Could not fetch weather: %v", err), nil
	}
	return report, nil
}
