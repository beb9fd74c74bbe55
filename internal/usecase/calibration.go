package usecase

import (
	"context"
	"fmt"
	"math"

	"TempQuant/internal/domain/models"
	"TempQuant/internal/domain/repository"
)

// Calibrator derives diagnostics from the ledger: realized forecast-error
// statistics and a confidence-vs-win-rate table. Output is never applied
// to live config automatically.
type Calibrator struct {
	ledger repository.Ledger
}

func NewCalibrator(ledger repository.Ledger) *Calibrator {
	return &Calibrator{ledger: ledger}
}

func (c *Calibrator) Report(ctx context.Context) (models.CalibrationReport, error) {
	recs, err := c.ledger.Load(ctx)
	if err != nil {
		return models.CalibrationReport{}, fmt.Errorf("load ledger: %w", err)
	}
	return models.CalibrationReport{
		Errors:  forecastErrors(recs),
		Buckets: calibrationBuckets(recs),
	}, nil
}

// forecastErrors computes signed/absolute error stats over trades with both
// forecast and actual temperature, one sample per (city, date) so multiple
// buckets on the same event do not overweight a single forecast.
func forecastErrors(recs []models.TradeRecord) models.ForecastErrorStats {
	seen := make(map[string]bool)
	var errors []float64
	for _, r := range recs {
		if r.ActualTemp == nil {
			continue
		}
		key := r.City + "/" + r.Date
		if seen[key] {
			continue
		}
		seen[key] = true
		errors = append(errors, r.ForecastTemp-float64(*r.ActualTemp))
	}

	stats := models.ForecastErrorStats{Samples: len(errors)}
	if len(errors) == 0 {
		return stats
	}

	var sum, sumAbs float64
	for _, e := range errors {
		sum += e
		sumAbs += math.Abs(e)
	}
	stats.MeanError = sum / float64(len(errors))
	stats.MeanAbsError = sumAbs / float64(len(errors))

	if len(errors) > 1 {
		var ss float64
		for _, e := range errors {
			d := e - stats.MeanError
			ss += d * d
		}
		stats.Sigma = math.Sqrt(ss / float64(len(errors)-1))
	}
	return stats
}

// calibrationBuckets groups settled trades into five 20-point confidence
// ranges and reports the realized win rate in each.
func calibrationBuckets(recs []models.TradeRecord) []models.CalibrationBucket {
	buckets := make([]models.CalibrationBucket, 5)
	for i := range buckets {
		buckets[i].LowPct = i * 20
		buckets[i].HighPct = i*20 + 20
	}
	for _, r := range recs {
		if !r.Settled() {
			continue
		}
		idx := r.Confidence / 20
		if idx > 4 {
			idx = 4
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx].Trades++
		if r.Won() {
			buckets[idx].Wins++
		}
	}
	for i := range buckets {
		if buckets[i].Trades > 0 {
			buckets[i].WinRate = float64(buckets[i].Wins) / float64(buckets[i].Trades)
		}
	}
	return buckets
}
