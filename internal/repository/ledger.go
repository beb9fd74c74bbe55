package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"TempQuant/internal/domain/models"
	"TempQuant/internal/domain/repository"
)

var ledgerHeader = []string{
	"date", "city", "event_ticker", "ticker",
	"bucket_low", "bucket_high",
	"forecast_temp", "confidence", "edge",
	"side", "price_cents", "contracts", "cost_cents",
	"order_id", "status", "fill_count",
	"actual_temp", "result", "revenue_cents", "pnl_cents",
}

// CSVLedger stores trade records in a single CSV file. The file is small
// (human-auditable by design), so every operation reads and rewrites it
// wholesale under one lock.
type CSVLedger struct {
	mu   sync.Mutex
	path string
}

func NewCSVLedger(dataDir string) *CSVLedger {
	return &CSVLedger{path: filepath.Join(dataDir, "ledger.csv")}
}

func (l *CSVLedger) Load(_ context.Context) ([]models.TradeRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *CSVLedger) Append(_ context.Context, rec models.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	recs, err := l.load()
	if err != nil {
		return err
	}
	return l.write(append(recs, rec))
}

func (l *CSVLedger) ReplaceAll(_ context.Context, recs []models.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(recs)
}

func (l *CSVLedger) load() ([]models.TradeRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	recs := make([]models.TradeRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := rowToRecord(row)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", i+2, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// write rewrites the whole file atomically via a temp file rename.
func (l *CSVLedger) write(recs []models.TradeRecord) error {
	tmp := l.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create ledger temp: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(ledgerHeader); err != nil {
		f.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, rec := range recs {
		if err := w.Write(recordToRow(rec)); err != nil {
			f.Close()
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger temp: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func recordToRow(r models.TradeRecord) []string {
	low, high := "", ""
	if r.Bucket.Low != nil {
		low = strconv.FormatFloat(*r.Bucket.Low, 'g', -1, 64)
	}
	if r.Bucket.High != nil {
		high = strconv.FormatFloat(*r.Bucket.High, 'g', -1, 64)
	}
	actual := ""
	if r.ActualTemp != nil {
		actual = strconv.Itoa(*r.ActualTemp)
	}
	return []string{
		r.Date, r.City, r.EventTicker, r.Ticker,
		low, high,
		strconv.FormatFloat(r.ForecastTemp, 'g', -1, 64),
		strconv.Itoa(r.Confidence),
		strconv.Itoa(r.Edge),
		string(r.Side),
		strconv.Itoa(r.PriceCents),
		strconv.Itoa(r.Contracts),
		strconv.FormatInt(r.CostCents, 10),
		r.OrderID, r.Status,
		strconv.Itoa(r.FillCount),
		actual, r.Result,
		strconv.FormatInt(r.RevenueCents, 10),
		strconv.FormatInt(r.PnLCents, 10),
	}
}

func rowToRecord(row []string) (models.TradeRecord, error) {
	if len(row) != len(ledgerHeader) {
		return models.TradeRecord{}, fmt.Errorf("want %d columns, got %d", len(ledgerHeader), len(row))
	}

	var rec models.TradeRecord
	rec.Date, rec.City, rec.EventTicker, rec.Ticker = row[0], row[1], row[2], row[3]

	if row[4] != "" {
		v, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return rec, fmt.Errorf("bucket_low: %w", err)
		}
		rec.Bucket.Low = &v
	}
	if row[5] != "" {
		v, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return rec, fmt.Errorf("bucket_high: %w", err)
		}
		rec.Bucket.High = &v
	}

	var err error
	if rec.ForecastTemp, err = strconv.ParseFloat(row[6], 64); err != nil {
		return rec, fmt.Errorf("forecast_temp: %w", err)
	}
	if rec.Confidence, err = strconv.Atoi(row[7]); err != nil {
		return rec, fmt.Errorf("confidence: %w", err)
	}
	if rec.Edge, err = strconv.Atoi(row[8]); err != nil {
		return rec, fmt.Errorf("edge: %w", err)
	}
	rec.Side = models.Side(row[9])
	if rec.PriceCents, err = strconv.Atoi(row[10]); err != nil {
		return rec, fmt.Errorf("price_cents: %w", err)
	}
	if rec.Contracts, err = strconv.Atoi(row[11]); err != nil {
		return rec, fmt.Errorf("contracts: %w", err)
	}
	if rec.CostCents, err = strconv.ParseInt(row[12], 10, 64); err != nil {
		return rec, fmt.Errorf("cost_cents: %w", err)
	}
	rec.OrderID, rec.Status = row[13], row[14]
	if rec.FillCount, err = strconv.Atoi(row[15]); err != nil {
		return rec, fmt.Errorf("fill_count: %w", err)
	}
	if row[16] != "" {
		v, err := strconv.Atoi(row[16])
		if err != nil {
			return rec, fmt.Errorf("actual_temp: %w", err)
		}
		rec.ActualTemp = &v
	}
	rec.Result = row[17]
	if rec.RevenueCents, err = strconv.ParseInt(row[18], 10, 64); err != nil {
		return rec, fmt.Errorf("revenue_cents: %w", err)
	}
	if rec.PnLCents, err = strconv.ParseInt(row[19], 10, 64); err != nil {
		return rec, fmt.Errorf("pnl_cents: %w", err)
	}
	return rec, nil
}

var _ repository.Ledger = (*CSVLedger)(nil)
