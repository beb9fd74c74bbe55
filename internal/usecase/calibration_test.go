package usecase

import (
	"context"
	"math"
	"testing"

	"TempQuant/internal/domain/models"
)

func calRec(city, date string, forecast float64, actual int, confidence int, result string) models.TradeRecord {
	return models.TradeRecord{
		City:         city,
		Date:         date,
		ForecastTemp: forecast,
		ActualTemp:   &actual,
		Confidence:   confidence,
		Result:       result,
	}
}

func TestCalibrationForecastErrors(t *testing.T) {
	ledger := &fakeLedger{recs: []models.TradeRecord{
		calRec("NYC", "2026-08-28", 40, 38, 80, models.ResultWon),  // error +2
		calRec("NYC", "2026-08-29", 35, 39, 70, models.ResultLost), // error -4
		calRec("CHI", "2026-08-29", 50, 50, 60, models.ResultWon),  // error 0
	}}

	report, err := NewCalibrator(ledger).Report(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats := report.Errors
	if stats.Samples != 3 {
		t.Fatalf("samples %d, want 3", stats.Samples)
	}
	if math.Abs(stats.MeanError-(-2.0/3)) > 1e-9 {
		t.Fatalf("mean error %f, want %f", stats.MeanError, -2.0/3)
	}
	if math.Abs(stats.MeanAbsError-2) > 1e-9 {
		t.Fatalf("mean abs error %f, want 2", stats.MeanAbsError)
	}
	// sample stddev of {2, -4, 0}
	want := math.Sqrt((math.Pow(2-(-2.0/3), 2) + math.Pow(-4-(-2.0/3), 2) + math.Pow(0-(-2.0/3), 2)) / 2)
	if math.Abs(stats.Sigma-want) > 1e-9 {
		t.Fatalf("sigma %f, want %f", stats.Sigma, want)
	}
}

func TestCalibrationDeduplicatesByCityDate(t *testing.T) {
	// Two buckets traded on the same NYC event share one forecast; only the
	// first contributes an error sample.
	ledger := &fakeLedger{recs: []models.TradeRecord{
		calRec("NYC", "2026-08-28", 40, 38, 80, models.ResultWon),
		calRec("NYC", "2026-08-28", 40, 38, 60, models.ResultLost),
	}}

	report, err := NewCalibrator(ledger).Report(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Errors.Samples != 1 {
		t.Fatalf("samples %d, want 1 after dedup", report.Errors.Samples)
	}
}

func TestCalibrationBuckets(t *testing.T) {
	ledger := &fakeLedger{recs: []models.TradeRecord{
		calRec("NYC", "2026-08-25", 40, 38, 85, models.ResultWon),
		calRec("NYC", "2026-08-26", 40, 38, 85, models.ResultWon),
		calRec("NYC", "2026-08-27", 40, 38, 85, models.ResultLost),
		calRec("NYC", "2026-08-28", 40, 38, 100, models.ResultWon), // 100 joins the top bucket
		calRec("NYC", "2026-08-29", 40, 38, 55, models.ResultLost),
		{City: "NYC", Date: "2026-08-30", Confidence: 90}, // unsettled, excluded
	}}

	report, err := NewCalibrator(ledger).Report(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Buckets) != 5 {
		t.Fatalf("got %d buckets, want 5", len(report.Buckets))
	}

	top := report.Buckets[4]
	if top.LowPct != 80 || top.HighPct != 100 {
		t.Fatalf("top bucket range %d-%d", top.LowPct, top.HighPct)
	}
	if top.Trades != 4 || top.Wins != 3 {
		t.Fatalf("top bucket %d trades %d wins, want 4/3", top.Trades, top.Wins)
	}
	if math.Abs(top.WinRate-0.75) > 1e-9 {
		t.Fatalf("top win rate %f, want 0.75", top.WinRate)
	}

	mid := report.Buckets[2]
	if mid.Trades != 1 || mid.Wins != 0 {
		t.Fatalf("40-60 bucket %d/%d, want 1/0", mid.Trades, mid.Wins)
	}
}
