package nws

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TempQuant/pkg/config"
)

const forecastBody = `{
  "properties": {
    "periods": [
      {"name": "Today", "isDaytime": true, "temperature": 38, "temperatureUnit": "F", "probabilityOfPrecipitation": {"value": 20}},
      {"name": "Tonight", "isDaytime": false, "temperature": 28, "temperatureUnit": "F", "probabilityOfPrecipitation": {"value": null}},
      {"name": "Sunday", "isDaytime": true, "temperature": 41, "temperatureUnit": "F", "probabilityOfPrecipitation": {"value": null}},
      {"name": "Sunday Night", "isDaytime": false, "temperature": 30, "temperatureUnit": "F", "probabilityOfPrecipitation": {"value": 10}}
    ]
  }
}`

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Forecast.BaseURL = baseURL
	cfg.Forecast.UserAgent = "tempquant-test (ops@example.com)"
	cfg.Forecast.Timeout = 5 * time.Second
	cfg.Forecast.CacheTTL = time.Minute
	cfg.Cities = []config.City{{
		Code: "NYC", Name: "New York", Series: "KXHIGHNY",
		Timezone: "America/New_York", Office: "OKX", GridX: 33, GridY: 37,
	}}
	return cfg
}

func TestPointForecastParsesDaytimePeriods(t *testing.T) {
	var gotPath, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, forecastBody)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	fc, err := c.PointForecast(context.Background(), "NYC")
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if gotPath != "/gridpoints/OKX/33,37/forecast" {
		t.Fatalf("path %q", gotPath)
	}
	if !strings.Contains(gotAgent, "tempquant-test") {
		t.Fatalf("user agent %q", gotAgent)
	}
	if fc.Today.HighTemp != 38 || fc.Today.PrecipPct != 20 {
		t.Fatalf("today %+v", fc.Today)
	}
	if fc.Tomorrow.HighTemp != 41 || fc.Tomorrow.PrecipPct != 0 {
		t.Fatalf("tomorrow %+v", fc.Tomorrow)
	}
}

func TestPointForecastCachesWithinTTL(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, forecastBody)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	ctx := context.Background()
	if _, err := c.PointForecast(ctx, "NYC"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := c.PointForecast(ctx, "NYC"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("upstream hit %d times, want 1", calls)
	}
}

func TestPointForecastRejectsShortPeriodList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"properties":{"periods":[{"name":"Tonight","isDaytime":false,"temperature":28}]}}`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	if _, err := c.PointForecast(context.Background(), "NYC"); err == nil {
		t.Fatal("expected error for missing daytime periods")
	}
}

func TestPointForecastUnknownCity(t *testing.T) {
	c := New(testConfig("http://unused"))
	if _, err := c.PointForecast(context.Background(), "ZZZ"); err == nil {
		t.Fatal("expected error for unconfigured city")
	}
}

func TestAllPointForecastsIsolatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "LOX") {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, forecastBody)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Cities = append(cfg.Cities, config.City{
		Code: "LAX", Name: "Los Angeles", Series: "KXHIGHLAX",
		Timezone: "America/Los_Angeles", Office: "LOX", GridX: 155, GridY: 45,
	})

	c := New(cfg)
	out, errs := c.AllPointForecasts(context.Background())
	if len(out) != 1 || out[0].City != "NYC" {
		t.Fatalf("forecasts %+v", out)
	}
	if len(errs) != 1 || errs[0].City != "LAX" {
		t.Fatalf("errors %+v", errs)
	}
}
