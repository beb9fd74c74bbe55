package service

import (
	"context"

	"TempQuant/internal/domain/models"
)

// CityError pairs a per-city failure with the city it came from. Batch
// providers return partial results plus a CityError per failed city; one
// city failing never aborts the batch.
type CityError struct {
	City string
	Err  error
}

func (e CityError) Error() string {
	return e.City + ": " + e.Err.Error()
}

func (e CityError) Unwrap() error {
	return e.Err
}

// ForecastProvider serves per-city point forecasts.
type ForecastProvider interface {
	PointForecast(ctx context.Context, city string) (models.CityForecast, error)
	AllPointForecasts(ctx context.Context) ([]models.CityForecast, []CityError)
}

// EnsembleProvider serves per-city ensemble member forecasts.
type EnsembleProvider interface {
	EnsembleForecast(ctx context.Context, city string) (today, tomorrow models.EnsembleForecast, err error)
	AllEnsembleForecasts(ctx context.Context) ([]models.EnsembleForecast, []CityError)
}

// ObservationProvider serves historical realized temperatures. day is a
// "2006-01-02" key in the city's local calendar.
type ObservationProvider interface {
	ObservedHigh(ctx context.Context, city, day string) (int, error)
}

// MarketProvider lists the exchange's open temperature markets for all
// configured cities and horizons.
type MarketProvider interface {
	ScanMarkets(ctx context.Context) ([]models.EventMarkets, error)
}

// Exchange is the authenticated trading surface.
type Exchange interface {
	Balance(ctx context.Context) (int64, error)
	Positions(ctx context.Context) ([]models.Position, error)
	CreateOrder(ctx context.Context, req models.OrderRequest) (models.Order, error)
	Orders(ctx context.Context) ([]models.Order, error)
	Settlements(ctx context.Context) ([]models.Settlement, error)
}

// PriceFeed exposes the freshest known yes price for a market, when a live
// stream is connected.
type PriceFeed interface {
	LastYesPrice(ticker string) (int, bool)
}
