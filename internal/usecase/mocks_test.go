package usecase

import (
	"context"
	"errors"
	"sync"

	"TempQuant/internal/domain/models"
	domsvc "TempQuant/internal/domain/service"
)

type fakeLedger struct {
	mu   sync.Mutex
	recs []models.TradeRecord
}

func (l *fakeLedger) Load(context.Context) ([]models.TradeRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.TradeRecord(nil), l.recs...), nil
}

func (l *fakeLedger) Append(_ context.Context, rec models.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recs = append(l.recs, rec)
	return nil
}

func (l *fakeLedger) ReplaceAll(_ context.Context, recs []models.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recs = append([]models.TradeRecord(nil), recs...)
	return nil
}

type fakeConfigStore struct {
	cfg models.TradingConfig
}

func (s *fakeConfigStore) Load(context.Context) (models.TradingConfig, error) { return s.cfg, nil }
func (s *fakeConfigStore) Save(_ context.Context, cfg models.TradingConfig) error {
	s.cfg = cfg
	return nil
}

type fakeBudgetStore struct {
	state models.BudgetState
}

func (s *fakeBudgetStore) Load(_ context.Context, today string) (models.BudgetState, error) {
	if s.state.Date != today {
		return models.BudgetState{Date: today}, nil
	}
	return s.state, nil
}

func (s *fakeBudgetStore) RecordSpend(_ context.Context, today string, cents int64) (models.BudgetState, error) {
	if s.state.Date != today {
		s.state = models.BudgetState{Date: today}
	}
	s.state.SpentCents += cents
	return s.state, nil
}

type fakePaperStore struct {
	state models.PaperState
	init  bool
}

func (s *fakePaperStore) Load(context.Context) (models.PaperState, error) {
	if !s.init {
		s.init = true
		s.state = models.NewPaperState()
	}
	return s.state, nil
}

func (s *fakePaperStore) Save(_ context.Context, st models.PaperState) error {
	s.state = st
	s.init = true
	return nil
}

type fakeExchange struct {
	balance      int64
	balanceErr   error
	positions    []models.Position
	positionsErr error
	orders       []models.Order
	ordersErr    error
	settlements  []models.Settlement
	created      []models.OrderRequest
	createErr    error
	nextOrderID  string
}

func (e *fakeExchange) Balance(context.Context) (int64, error) { return e.balance, e.balanceErr }
func (e *fakeExchange) Positions(context.Context) ([]models.Position, error) {
	return e.positions, e.positionsErr
}
func (e *fakeExchange) CreateOrder(_ context.Context, req models.OrderRequest) (models.Order, error) {
	if e.createErr != nil {
		return models.Order{}, e.createErr
	}
	e.created = append(e.created, req)
	id := e.nextOrderID
	if id == "" {
		id = "ORD-1"
	}
	return models.Order{OrderID: id, Ticker: req.Ticker, Side: req.Side, Status: "resting"}, nil
}
func (e *fakeExchange) Orders(context.Context) ([]models.Order, error) { return e.orders, e.ordersErr }
func (e *fakeExchange) Settlements(context.Context) ([]models.Settlement, error) {
	return e.settlements, nil
}

type fakeForecasts struct {
	calls     int
	forecasts []models.CityForecast
}

func (f *fakeForecasts) PointForecast(_ context.Context, city string) (models.CityForecast, error) {
	for _, fc := range f.forecasts {
		if fc.City == city {
			return fc, nil
		}
	}
	return models.CityForecast{}, errors.New("unknown city")
}

func (f *fakeForecasts) AllPointForecasts(context.Context) ([]models.CityForecast, []domsvc.CityError) {
	f.calls++
	return f.forecasts, nil
}

type fakeEnsembles struct {
	forecasts []models.EnsembleForecast
}

func (f *fakeEnsembles) EnsembleForecast(context.Context, string) (models.EnsembleForecast, models.EnsembleForecast, error) {
	return models.EnsembleForecast{}, models.EnsembleForecast{}, errors.New("not configured")
}

func (f *fakeEnsembles) AllEnsembleForecasts(context.Context) ([]models.EnsembleForecast, []domsvc.CityError) {
	return f.forecasts, nil
}

type fakeMarkets struct {
	calls  int
	events []models.EventMarkets
	err    error
}

func (f *fakeMarkets) ScanMarkets(context.Context) ([]models.EventMarkets, error) {
	f.calls++
	return f.events, f.err
}

type fakeObservations struct {
	highs map[string]int // key city+"/"+date
	err   error
}

func (f *fakeObservations) ObservedHigh(_ context.Context, city, day string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	high, ok := f.highs[city+"/"+day]
	if !ok {
		return 0, errors.New("no observation")
	}
	return high, nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (n *fakeNotifier) SendText(_ context.Context, text string) error {
	n.sent = append(n.sent, text)
	return n.err
}

type nopEvents struct{}

func (nopEvents) Publish(context.Context, string, string, interface{}) error { return nil }
func (nopEvents) Close() error                                               { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordScan(string)             {}
func (nopMetrics) RecordOpportunities(int)       {}
func (nopMetrics) RecordTrade(string)            {}
func (nopMetrics) RecordProviderError(string)    {}
func (nopMetrics) RecordBreakerTrip()            {}
func (nopMetrics) RecordBankroll(int64)          {}
func (nopMetrics) RecordLatency(string, float64) {}
