package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func weatherStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appid") != "test-key" {
			t.Errorf("missing api key in query")
		}
		if r.URL.Query().Get("units") != "metric" {
			t.Errorf("expected metric units")
		}

		switch r.URL.Path {
		case "/weather":
			w.Write([]byte(`{
				"weather": [{"description": "scattered clouds"}],
				"main": {"temp": 29.4, "humidity": 78},
				"wind": {"speed": 4.2, "deg": 310},
				"clouds": {"all": 40},
				"visibility": 8000
			}`))
		case "/forecast":
			if r.URL.Query().Get("cnt") != "4" {
				t.Errorf("expected cnt=4, got %s", r.URL.Query().Get("cnt"))
			}
			w.Write([]byte(`{
				"list": [
					{"dt_txt": "2026-08-30 12:00:00", "main": {"temp": 30.1},
					 "wind": {"speed": 3.0}, "weather": [{"description": "clear sky"}]},
					{"dt_txt": "2026-08-30 15:00:00", "main": {"temp": 28.5},
					 "wind": {"speed": 12.0}, "weather": [{"description": "light rain"}],
					 "rain": {"3h": 2.5}}
				]
			}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func TestWeatherReport(t *testing.T) {
	server := weatherStub(t)
	defer server.Close()

	client := NewWeatherClient("test-key", nil, WithWeatherBaseURL(server.URL))
	report, err := client.Report(context.Background(), 15.49, 73.82, "Goa")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if !strings.Contains(report, "**Goa**") {
		t.Errorf("expected location label, got:\n%s", report)
	}
	if !strings.Contains(report, "Scattered Clouds") {
		t.Errorf("expected title-cased description, got:\n%s", report)
	}
	if !strings.Contains(report, "Wind: 4.2 m/s (310°)") {
		t.Errorf("expected wind line, got:\n%s", report)
	}
	// 4.2 m/s sits in the gentle breeze band.
	if !strings.Contains(report, "Gentle breeze") {
		t.Errorf("expected gentle breeze advisory, got:\n%s", report)
	}
	if !strings.Contains(report, "Next 12-Hour Forecast") {
		t.Errorf("expected forecast section, got:\n%s", report)
	}
	// 12 m/s forecast wind crosses into the strong breeze warning.
	if !strings.Contains(report, "avoid deep sea") {
		t.Errorf("expected strong breeze warning in forecast, got:\n%s", report)
	}
	if !strings.Contains(report, "Rain 2.5mm") {
		t.Errorf("expected forecast rain, got:\n%s", report)
	}
	if !strings.Contains(report, "15:00") {
		t.Errorf("expected forecast timestamps, got:\n%s", report)
	}
}

func TestWeatherReportDefaultLabel(t *testing.T) {
	server := weatherStub(t)
	defer server.Close()

	client := NewWeatherClient("test-key", nil, WithWeatherBaseURL(server.URL))
	report, err := client.Report(context.Background(), 15.49, 73.82, "")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.Contains(report, "15.49°N, 73.82°E") {
		t.Errorf("expected coordinate label, got:\n%s", report)
	}
}

func TestWeatherToolDegradesOnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":401,"message":"Invalid API key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	r, _ := testRegistry(t)
	r.weather = NewWeatherClient("bad-key", nil, WithWeatherBaseURL(server.URL))

	out, err := r.Execute(context.Background(), "get_weather", map[string]any{
		"latitude":  15.49,
		"longitude": 73.82,
	})
	if err != nil {
		t.Fatalf("weather failures should degrade, not error: %v", err)
	}
	if !strings.Contains(out, "Could not fetch weather") {
		t.Errorf("expected degraded notice, got %q", out)
	}
}

func TestWindAdvisoryBands(t *testing.T) {
	tests := []struct {
		speed float64
		want  string
	}{
		{0.1, "Calm"},
		{2.0, "Light breeze"},
		{9.5, "Fresh breeze"},
		{20.0, "DO NOT GO TO SEA"},
	}
	for _, tt := range tests {
		if got := windAdvisory(tt.speed); !strings.Contains(got, tt.want) {
			t.Errorf("windAdvisory(%.1f) = %q, want substring %q", tt.speed, got, tt.want)
		}
	}
}
