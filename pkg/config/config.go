package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// City describes one configured market city: the exchange series it trades
// under and the coordinates used by the forecast, ensemble and observation
// feeds.
type City struct {
	Code      string  `yaml:"code"`
	Name      string  `yaml:"name"`
	Series    string  `yaml:"series"`
	Timezone  string  `yaml:"timezone"`
	Office    string  `yaml:"office"`
	GridX     int     `yaml:"grid_x"`
	GridY     int     `yaml:"grid_y"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type Config struct {
	Environment string `yaml:"environment"`
	DataDir     string `yaml:"data_dir"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Exchange struct {
		BaseURL        string        `yaml:"base_url"`
		WSURL          string        `yaml:"ws_url"`
		KeyID          string        `yaml:"key_id"`
		PrivateKeyPath string        `yaml:"private_key_path"`
		Timeout        time.Duration `yaml:"timeout"`
		StreamEnabled  bool          `yaml:"stream_enabled"`
		RateLimit      float64       `yaml:"rate_limit"` // requests per second
	} `yaml:"exchange"`
	Forecast struct {
		BaseURL   string        `yaml:"base_url"`
		UserAgent string        `yaml:"user_agent"`
		Timeout   time.Duration `yaml:"timeout"`
		CacheTTL  time.Duration `yaml:"cache_ttl"`
	} `yaml:"forecast"`
	Ensemble struct {
		BaseURL string        `yaml:"base_url"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"ensemble"`
	Observation struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"observation"`
	Notify struct {
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		Stream        string `yaml:"stream"`
	} `yaml:"notify"`
	Events struct {
		Brokers     []string `yaml:"brokers"`
		Topic       string   `yaml:"topic"`
		Compression string   `yaml:"compression"`
	} `yaml:"events"`
	Schedule struct {
		SettlementInterval   time.Duration `yaml:"settlement_interval"`
		SummaryCheckInterval time.Duration `yaml:"summary_check_interval"`
		SummaryHour          int           `yaml:"summary_hour"`
	} `yaml:"schedule"`
	Cities []City `yaml:"cities"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("KALSHI_KEY_ID"); v != "" {
		c.Exchange.KeyID = v
	}
	if v := os.Getenv("KALSHI_PRIVATE_KEY_PATH"); v != "" {
		c.Exchange.PrivateKeyPath = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Notify.RedisAddr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Exchange.BaseURL == "" {
		c.Exchange.BaseURL = "https://api.elections.kalshi.com"
	}
	if c.Exchange.WSURL == "" {
		c.Exchange.WSURL = "wss://api.elections.kalshi.com"
	}
	if c.Exchange.Timeout <= 0 {
		c.Exchange.Timeout = 10 * time.Second
	}
	if c.Exchange.RateLimit <= 0 {
		c.Exchange.RateLimit = 5
	}
	if c.Forecast.BaseURL == "" {
		c.Forecast.BaseURL = "https://api.weather.gov"
	}
	if c.Forecast.Timeout <= 0 {
		c.Forecast.Timeout = 10 * time.Second
	}
	if c.Forecast.CacheTTL <= 0 {
		c.Forecast.CacheTTL = 30 * time.Minute
	}
	if c.Ensemble.BaseURL == "" {
		c.Ensemble.BaseURL = "https://ensemble-api.open-meteo.com"
	}
	if c.Ensemble.Model == "" {
		c.Ensemble.Model = "gfs_seamless"
	}
	if c.Ensemble.Timeout <= 0 {
		c.Ensemble.Timeout = 15 * time.Second
	}
	if c.Observation.BaseURL == "" {
		c.Observation.BaseURL = "https://archive-api.open-meteo.com"
	}
	if c.Observation.Timeout <= 0 {
		c.Observation.Timeout = 15 * time.Second
	}
	if c.Notify.Stream == "" {
		c.Notify.Stream = "tempquant.notifications"
	}
	if c.Events.Topic == "" {
		c.Events.Topic = "tempquant.trades"
	}
	if c.Events.Compression == "" {
		c.Events.Compression = "gzip"
	}
	if c.Schedule.SettlementInterval <= 0 {
		c.Schedule.SettlementInterval = 30 * time.Minute
	}
	if c.Schedule.SummaryCheckInterval <= 0 {
		c.Schedule.SummaryCheckInterval = time.Minute
	}
	if c.Schedule.SummaryHour == 0 {
		c.Schedule.SummaryHour = 20
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Cities) == 0 {
		return fmt.Errorf("cities cannot be empty")
	}
	for i, city := range c.Cities {
		if city.Code == "" {
			return fmt.Errorf("cities[%d].code is required", i)
		}
		if city.Series == "" {
			return fmt.Errorf("city %s: series is required", city.Code)
		}
		if city.Timezone == "" {
			return fmt.Errorf("city %s: timezone is required", city.Code)
		}
		if _, err := time.LoadLocation(city.Timezone); err != nil {
			return fmt.Errorf("city %s: invalid timezone %q", city.Code, city.Timezone)
		}
	}
	if c.Schedule.SummaryHour < 0 || c.Schedule.SummaryHour > 23 {
		return fmt.Errorf("schedule.summary_hour must be within 0..23, got %d", c.Schedule.SummaryHour)
	}
	return nil
}

// CityByCode returns the configured city with the given code.
func (c *Config) CityByCode(code string) (City, bool) {
	for _, city := range c.Cities {
		if city.Code == code {
			return city, true
		}
	}
	return City{}, false
}
