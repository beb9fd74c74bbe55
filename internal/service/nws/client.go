package nws

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"TempQuant/internal/domain/models"
	domsvc "TempQuant/internal/domain/service"
	"TempQuant/internal/service/cache"
	"TempQuant/pkg/config"
	xhttp "TempQuant/pkg/http"
)

// Client implements ForecastProvider backed by the NWS gridpoint forecast
// feed. The feed returns alternating day/night periods; the first two
// daytime periods are today and tomorrow.
type Client struct {
	baseURL   string
	userAgent string
	cities    []config.City
	client    *xhttp.Client
	cache     *cache.TTLCache
	cacheTTL  time.Duration
}

// New creates a new NWS forecast provider.
func New(cfg *config.Config) *Client {
	return &Client{
		baseURL:   cfg.Forecast.BaseURL,
		userAgent: cfg.Forecast.UserAgent,
		cities:    cfg.Cities,
		client:    xhttp.NewClient(xhttp.WithTimeout(cfg.Forecast.Timeout)),
		cache:     cache.NewTTLCache(),
		cacheTTL:  cfg.Forecast.CacheTTL,
	}
}

type forecastResponse struct {
	Properties struct {
		Periods []forecastPeriod `json:"periods"`
	} `json:"properties"`
}

type forecastPeriod struct {
	Name                       string `json:"name"`
	IsDaytime                  bool   `json:"isDaytime"`
	Temperature                int    `json:"temperature"`
	TemperatureUnit            string `json:"temperatureUnit"`
	ProbabilityOfPrecipitation struct {
		Value *int `json:"value"`
	} `json:"probabilityOfPrecipitation"`
}

// PointForecast returns today's and tomorrow's high temperature estimates
// for one configured city.
func (c *Client) PointForecast(ctx context.Context, city string) (models.CityForecast, error) {
	cfgCity, ok := c.cityByCode(city)
	if !ok {
		return models.CityForecast{}, fmt.Errorf("city %s is not configured", city)
	}

	if v, ok := c.cache.Get(city); ok {
		return v.(models.CityForecast), nil
	}

	url := fmt.Sprintf("%s/gridpoints/%s/%d,%d/forecast", c.baseURL, cfgCity.Office, cfgCity.GridX, cfgCity.GridY)
	var resp forecastResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     url,
		Headers: map[string]string{"User-Agent": c.userAgent, "Accept": "application/geo+json"},
	}, &resp)
	if err != nil {
		return models.CityForecast{}, fmt.Errorf("fetch forecast %s: %w", city, err)
	}

	var daytime []forecastPeriod
	for _, p := range resp.Properties.Periods {
		if p.IsDaytime {
			daytime = append(daytime, p)
		}
		if len(daytime) == 2 {
			break
		}
	}
	if len(daytime) < 2 {
		return models.CityForecast{}, fmt.Errorf("forecast %s: need 2 daytime periods, got %d", city, len(daytime))
	}

	fc := models.CityForecast{
		City:     city,
		Today:    toPoint(city, models.HorizonToday, daytime[0]),
		Tomorrow: toPoint(city, models.HorizonTomorrow, daytime[1]),
	}
	c.cache.Set(city, fc, c.cacheTTL)
	return fc, nil
}

// AllPointForecasts fans out across all configured cities concurrently.
// Each city's failure is isolated; the partial list is returned alongside
// per-city errors.
func (c *Client) AllPointForecasts(ctx context.Context) ([]models.CityForecast, []domsvc.CityError) {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		out  []models.CityForecast
		errs []domsvc.CityError
	)

	for _, city := range c.cities {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			fc, err := c.PointForecast(ctx, code)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, domsvc.CityError{City: code, Err: err})
				return
			}
			out = append(out, fc)
		}(city.Code)
	}
	wg.Wait()

	sort.Slice(out, func(i, j int) bool { return out[i].City < out[j].City })
	return out, errs
}

func (c *Client) cityByCode(code string) (config.City, bool) {
	for _, city := range c.cities {
		if city.Code == code {
			return city, true
		}
	}
	return config.City{}, false
}

func toPoint(city string, horizon models.Horizon, p forecastPeriod) models.ForecastPoint {
	precip := 0
	if p.ProbabilityOfPrecipitation.Value != nil {
		precip = *p.ProbabilityOfPrecipitation.Value
	}
	return models.ForecastPoint{
		City:      city,
		Horizon:   horizon,
		HighTemp:  float64(p.Temperature),
		PrecipPct: precip,
	}
}

var _ domsvc.ForecastProvider = (*Client)(nil)
