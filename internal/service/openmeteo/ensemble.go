package openmeteo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"TempQuant/internal/domain/models"
	domsvc "TempQuant/internal/domain/service"
	"TempQuant/pkg/config"
	xhttp "TempQuant/pkg/http"
)

// EnsembleClient pulls per-member daily max temperature from the Open-Meteo
// ensemble API. Member spread drives the confidence model.
type EnsembleClient struct {
	baseURL string
	model   string
	cities  []config.City
	client  *xhttp.Client
}

func NewEnsembleClient(cfg *config.Config) *EnsembleClient {
	return &EnsembleClient{
		baseURL: cfg.Ensemble.BaseURL,
		model:   cfg.Ensemble.Model,
		cities:  cfg.Cities,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Ensemble.Timeout)),
	}
}

type ensembleResponse struct {
	Daily map[string]interface{} `json:"daily"`
}

// EnsembleForecast returns today's and tomorrow's member distributions for
// one city. Variables arrive as temperature_2m_max for the control run plus
// temperature_2m_max_memberNN for each perturbed member.
func (c *EnsembleClient) EnsembleForecast(ctx context.Context, city string) (models.EnsembleForecast, models.EnsembleForecast, error) {
	cfgCity, ok := c.cityByCode(city)
	if !ok {
		return models.EnsembleForecast{}, models.EnsembleForecast{}, fmt.Errorf("city %s is not configured", city)
	}

	var resp ensembleResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v1/ensemble",
		QueryParams: map[string][]string{
			"latitude":         {fmt.Sprintf("%.4f", cfgCity.Latitude)},
			"longitude":        {fmt.Sprintf("%.4f", cfgCity.Longitude)},
			"daily":            {"temperature_2m_max"},
			"temperature_unit": {"fahrenheit"},
			"timezone":         {cfgCity.Timezone},
			"forecast_days":    {"2"},
			"models":           {c.model},
		},
	}, &resp)
	if err != nil {
		return models.EnsembleForecast{}, models.EnsembleForecast{}, fmt.Errorf("fetch ensemble %s: %w", city, err)
	}

	today := memberValues(resp.Daily, 0)
	tomorrow := memberValues(resp.Daily, 1)
	if len(today) == 0 || len(tomorrow) == 0 {
		return models.EnsembleForecast{}, models.EnsembleForecast{}, fmt.Errorf("ensemble %s: no member values", city)
	}
	return models.NewEnsembleForecast(city, models.HorizonToday, today),
		models.NewEnsembleForecast(city, models.HorizonTomorrow, tomorrow), nil
}

// AllEnsembleForecasts fans out across all configured cities. Each city
// contributes two entries, today then tomorrow.
func (c *EnsembleClient) AllEnsembleForecasts(ctx context.Context) ([]models.EnsembleForecast, []domsvc.CityError) {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		out  []models.EnsembleForecast
		errs []domsvc.CityError
	)

	for _, city := range c.cities {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			today, tomorrow, err := c.EnsembleForecast(ctx, code)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, domsvc.CityError{City: code, Err: err})
				return
			}
			out = append(out, today, tomorrow)
		}(city.Code)
	}
	wg.Wait()

	sort.Slice(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Horizon < out[j].Horizon
	})
	return out, errs
}

func (c *EnsembleClient) cityByCode(code string) (config.City, bool) {
	for _, city := range c.cities {
		if city.Code == code {
			return city, true
		}
	}
	return config.City{}, false
}

// memberValues extracts the day-index value of every ensemble member
// variable from the daily block in a stable order.
func memberValues(daily map[string]interface{}, dayIdx int) []float64 {
	keys := make([]string, 0, len(daily))
	for k := range daily {
		if strings.HasPrefix(k, "temperature_2m_max") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var vals []float64
	for _, k := range keys {
		arr, ok := daily[k].([]interface{})
		if !ok || dayIdx >= len(arr) {
			continue
		}
		if v, ok := arr[dayIdx].(float64); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

var _ domsvc.EnsembleProvider = (*EnsembleClient)(nil)
