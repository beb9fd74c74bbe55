package models

// Horizon identifies which trading day a forecast or market refers to.
type Horizon string

const (
	HorizonToday    Horizon = "today"
	HorizonTomorrow Horizon = "tomorrow"
)

// MinEnsembleMembers is the smallest member count for which an empirical
// bucket probability is considered usable.
const MinEnsembleMembers = 10

// ForecastPoint is a single-city, single-horizon high temperature estimate.
type ForecastPoint struct {
	City      string  `json:"city"`
	Horizon   Horizon `json:"horizon"`
	HighTemp  float64 `json:"high_temp"`
	PrecipPct int     `json:"precip_pct"`
}

// CityForecast pairs today's and tomorrow's point forecasts for one city.
type CityForecast struct {
	City     string        `json:"city"`
	Today    ForecastPoint `json:"today"`
	Tomorrow ForecastPoint `json:"tomorrow"`
}

// EnsembleForecast holds the member temperature samples for one city and
// horizon plus derived statistics.
type EnsembleForecast struct {
	City    string    `json:"city"`
	Horizon Horizon   `json:"horizon"`
	Members []float64 `json:"members"`
	Mean    float64   `json:"mean"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Spread  float64   `json:"spread"`
}

// NewEnsembleForecast builds an EnsembleForecast and computes derived stats.
func NewEnsembleForecast(city string, horizon Horizon, members []float64) EnsembleForecast {
	e := EnsembleForecast{City: city, Horizon: horizon, Members: members}
	if len(members) == 0 {
		return e
	}
	e.Min = members[0]
	e.Max = members[0]
	var sum float64
	for _, m := range members {
		sum += m
		if m < e.Min {
			e.Min = m
		}
		if m > e.Max {
			e.Max = m
		}
	}
	e.Mean = sum / float64(len(members))
	e.Spread = e.Max - e.Min
	return e
}

// Usable reports whether the ensemble has enough members for an empirical
// probability estimate.
func (e EnsembleForecast) Usable() bool {
	return len(e.Members) >= MinEnsembleMembers
}
