package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `environment: test
cities:
  - code: NYC
    name: New York
    series: KXHIGHNY
    timezone: America/New_York
    office: OKX
    grid_x: 33
    grid_y: 37
    latitude: 40.78
    longitude: -73.97
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Exchange.BaseURL != "https://api.elections.kalshi.com" {
		t.Fatalf("exchange base url %q", c.Exchange.BaseURL)
	}
	if c.Forecast.BaseURL != "https://api.weather.gov" {
		t.Fatalf("forecast base url %q", c.Forecast.BaseURL)
	}
	if c.Ensemble.Model != "gfs_seamless" {
		t.Fatalf("ensemble model %q", c.Ensemble.Model)
	}
	if c.Schedule.SettlementInterval != 30*time.Minute {
		t.Fatalf("settlement interval %v", c.Schedule.SettlementInterval)
	}
	if c.Schedule.SummaryHour != 20 {
		t.Fatalf("summary hour %d", c.Schedule.SummaryHour)
	}
	if c.DataDir != "data" {
		t.Fatalf("data dir %q", c.DataDir)
	}
}

func TestLoadExplicitValuesWin(t *testing.T) {
	yaml := minimalYAML + `exchange:
  base_url: https://demo-api.kalshi.co
  rate_limit: 2
forecast:
  cache_ttl: 5m
`
	c, err := Load(writeConfig(t, yaml))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Exchange.BaseURL != "https://demo-api.kalshi.co" {
		t.Fatalf("exchange base url %q", c.Exchange.BaseURL)
	}
	if c.Exchange.RateLimit != 2 {
		t.Fatalf("rate limit %v", c.Exchange.RateLimit)
	}
	if c.Forecast.CacheTTL != 5*time.Minute {
		t.Fatalf("cache ttl %v", c.Forecast.CacheTTL)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"missing environment", "cities:\n  - code: NYC\n    series: S\n    timezone: America/New_York\n", "environment is required"},
		{"no cities", "environment: test\n", "cities cannot be empty"},
		{"missing series", "environment: test\ncities:\n  - code: NYC\n    timezone: America/New_York\n", "series is required"},
		{"bad timezone", "environment: test\ncities:\n  - code: NYC\n    series: S\n    timezone: Mars/Olympus\n", "invalid timezone"},
		{"summary hour out of range", minimalYAML + "schedule:\n  summary_hour: 24\n", "summary_hour"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("KALSHI_KEY_ID", "key-from-env")
	t.Setenv("DATA_DIR", "/var/lib/tempquant")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Exchange.KeyID != "key-from-env" {
		t.Fatalf("key id %q", c.Exchange.KeyID)
	}
	if c.DataDir != "/var/lib/tempquant" {
		t.Fatalf("data dir %q", c.DataDir)
	}
	if len(c.Events.Brokers) != 2 || c.Events.Brokers[1] != "k2:9092" {
		t.Fatalf("brokers %v", c.Events.Brokers)
	}
}

func TestCityByCode(t *testing.T) {
	c, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	city, ok := c.CityByCode("NYC")
	if !ok || city.Series != "KXHIGHNY" {
		t.Fatalf("got %+v ok=%v", city, ok)
	}
	if _, ok := c.CityByCode("ZZZ"); ok {
		t.Fatal("unknown code must not resolve")
	}
}
