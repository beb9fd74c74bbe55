package openmeteo

import (
	"context"
	"fmt"

	domsvc "TempQuant/internal/domain/service"
	"TempQuant/pkg/config"
	xhttp "TempQuant/pkg/http"
	"TempQuant/pkg/util"
)

// ArchiveClient reads observed temperatures from the Open-Meteo archive API
// and reduces them to the daily high used for settlement.
type ArchiveClient struct {
	baseURL string
	cities  []config.City
	client  *xhttp.Client
}

func NewArchiveClient(cfg *config.Config) *ArchiveClient {
	return &ArchiveClient{
		baseURL: cfg.Observation.BaseURL,
		cities:  cfg.Cities,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Observation.Timeout)),
	}
}

type archiveResponse struct {
	Hourly struct {
		Temperature []*float64 `json:"temperature_2m"`
	} `json:"hourly"`
}

// ObservedHigh returns the observed daily high in whole degrees Fahrenheit
// for one city on day (YYYY-MM-DD). The archive serves hourly Celsius; the
// max is converted then rounded.
func (c *ArchiveClient) ObservedHigh(ctx context.Context, city, day string) (int, error) {
	cfgCity, ok := c.cityByCode(city)
	if !ok {
		return 0, fmt.Errorf("city %s is not configured", city)
	}
	if _, ok := util.ParseDay(day); !ok {
		return 0, fmt.Errorf("observed high %s: bad day key %q", city, day)
	}

	var resp archiveResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v1/archive",
		QueryParams: map[string][]string{
			"latitude":   {fmt.Sprintf("%.4f", cfgCity.Latitude)},
			"longitude":  {fmt.Sprintf("%.4f", cfgCity.Longitude)},
			"start_date": {day},
			"end_date":   {day},
			"hourly":     {"temperature_2m"},
			"timezone":   {cfgCity.Timezone},
		},
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("fetch observations %s %s: %w", city, day, err)
	}

	var (
		maxC  float64
		found bool
	)
	for _, v := range resp.Hourly.Temperature {
		if v == nil {
			continue
		}
		if !found || *v > maxC {
			maxC = *v
			found = true
		}
	}
	if !found {
		return 0, fmt.Errorf("observations %s %s: no readings yet", city, day)
	}
	return util.RoundDegree(util.CelsiusToFahrenheit(maxC)), nil
}

func (c *ArchiveClient) cityByCode(code string) (config.City, bool) {
	for _, city := range c.cities {
		if city.Code == code {
			return city, true
		}
	}
	return config.City{}, false
}

var _ domsvc.ObservationProvider = (*ArchiveClient)(nil)
