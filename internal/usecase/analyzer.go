package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"TempQuant/internal/domain/models"
	"TempQuant/internal/domain/repository"
	domsvc "TempQuant/internal/domain/service"
	"TempQuant/pkg/config"
	"TempQuant/pkg/logger"
)

// Analyzer detects mispricings between forecast-derived probability and the
// market-quoted yes price. Opportunities are ephemeral; each scan rebuilds
// the list from scratch.
type Analyzer struct {
	forecasts domsvc.ForecastProvider
	ensembles domsvc.EnsembleProvider
	markets   domsvc.MarketProvider
	exchange  domsvc.Exchange
	sizer     *Sizer
	cities    []config.City
	metrics   repository.Metrics
	log       *logger.Logger
}

func NewAnalyzer(
	forecasts domsvc.ForecastProvider,
	ensembles domsvc.EnsembleProvider,
	markets domsvc.MarketProvider,
	exchange domsvc.Exchange,
	sizer *Sizer,
	cfg *config.Config,
	metrics repository.Metrics,
	log *logger.Logger,
) *Analyzer {
	return &Analyzer{
		forecasts: forecasts,
		ensembles: ensembles,
		markets:   markets,
		exchange:  exchange,
		sizer:     sizer,
		cities:    cfg.Cities,
		metrics:   metrics,
		log:       log,
	}
}

// Analyze runs one full detection pass. Per-city provider failures surface
// in the second return value; only a whole-market-scan failure is fatal.
func (a *Analyzer) Analyze(ctx context.Context, cfg models.TradingConfig) ([]models.Opportunity, []string, error) {
	start := time.Now()
	defer func() {
		a.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	}()

	events, err := a.markets.ScanMarkets(ctx)
	if err != nil {
		a.metrics.RecordProviderError("markets")
		return nil, nil, fmt.Errorf("scan markets: %w", err)
	}
	if len(events) == 0 {
		return nil, nil, nil
	}

	var (
		wg        sync.WaitGroup
		points    []models.CityForecast
		pointErrs []domsvc.CityError
		members   []models.EnsembleForecast
		ensErrs   []domsvc.CityError
		bankroll  int64
		bankErr   error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		points, pointErrs = a.forecasts.AllPointForecasts(ctx)
	}()
	go func() {
		defer wg.Done()
		members, ensErrs = a.ensembles.AllEnsembleForecasts(ctx)
	}()
	go func() {
		defer wg.Done()
		bankroll, bankErr = a.availableBankroll(ctx)
	}()
	wg.Wait()

	var provErrs []string
	for _, e := range pointErrs {
		a.metrics.RecordProviderError("forecast")
		provErrs = append(provErrs, "forecast "+e.Error())
	}
	for _, e := range ensErrs {
		a.metrics.RecordProviderError("ensemble")
		provErrs = append(provErrs, "ensemble "+e.Error())
	}
	if bankErr != nil {
		a.metrics.RecordProviderError("exchange")
		provErrs = append(provErrs, "bankroll: "+bankErr.Error())
	} else {
		a.metrics.RecordBankroll(bankroll)
	}

	pointByCity := make(map[string]models.CityForecast, len(points))
	for _, p := range points {
		pointByCity[p.City] = p
	}
	ensByKey := make(map[string]models.EnsembleForecast, len(members))
	for _, e := range members {
		ensByKey[e.City+"/"+string(e.Horizon)] = e
	}

	var opps []models.Opportunity
	for _, ev := range events {
		if a.stale(ev, cfg.StalenessCutoffHour) {
			continue
		}
		for _, m := range ev.Markets {
			opp, ok := a.evaluate(ev, m, pointByCity, ensByKey, bankroll, cfg)
			if ok {
				opps = append(opps, opp)
			}
		}
	}

	sort.SliceStable(opps, func(i, j int) bool { return opps[i].Edge > opps[j].Edge })
	a.metrics.RecordOpportunities(len(opps))
	return opps, provErrs, nil
}

// stale drops a city's "today" event once local time has passed the cutoff
// hour: the day's peak has likely occurred and the quote already prices it.
func (a *Analyzer) stale(ev models.EventMarkets, cutoffHour int) bool {
	if ev.Horizon != models.HorizonToday {
		return false
	}
	city, ok := a.cityByCode(ev.City)
	if !ok {
		return false
	}
	loc, err := time.LoadLocation(city.Timezone)
	if err != nil {
		return false
	}
	return time.Now().In(loc).Hour() >= cutoffHour
}

func (a *Analyzer) evaluate(
	ev models.EventMarkets,
	m models.Market,
	pointByCity map[string]models.CityForecast,
	ensByKey map[string]models.EnsembleForecast,
	bankroll int64,
	cfg models.TradingConfig,
) (models.Opportunity, bool) {
	if !m.Bucket.Valid() || m.YesPrice < 1 || m.YesPrice > 99 {
		return models.Opportunity{}, false
	}

	conf, source, forecastTemp, spread, ok := a.confidence(ev, m, pointByCity, ensByKey, cfg)
	if !ok {
		return models.Opportunity{}, false
	}

	edge := conf - m.YesPrice
	if edge < cfg.MinEdge {
		return models.Opportunity{}, false
	}

	sizing := a.sizer.Size(SizingInput{
		BankrollCents: bankroll,
		Edge:          edge,
		YesPriceCents: m.YesPrice,
		Multiplier:    cfg.KellyMultiplier,
		MinTradeCents: cfg.MinTradeCents,
		MaxTradeCents: cfg.MaxTradeCents,
	})
	if sizing.Declined() {
		a.log.Debug("opportunity declined at sizing",
			logger.String("ticker", m.Ticker),
			logger.Int("edge", edge),
			logger.String("reason", sizing.Reason))
		return models.Opportunity{}, false
	}

	limit := m.YesPrice + 1
	if limit > 99 {
		limit = 99
	}
	return models.Opportunity{
		City:         ev.City,
		Horizon:      ev.Horizon,
		Date:         ev.Date,
		EventTicker:  ev.EventTicker,
		Ticker:       m.Ticker,
		Bucket:       m.Bucket,
		ForecastTemp: forecastTemp,
		Confidence:   conf,
		Source:       source,
		Spread:       spread,
		YesPrice:     m.YesPrice,
		Edge:         edge,
		LimitPrice:   limit,
		AmountCents:  sizing.AmountCents,
		Contracts:    sizing.Contracts,
		Rationale:    sizing.Rationale,
	}, true
}

// confidence prefers the empirical ensemble estimate; the capped normal
// model is the fallback.
func (a *Analyzer) confidence(
	ev models.EventMarkets,
	m models.Market,
	pointByCity map[string]models.CityForecast,
	ensByKey map[string]models.EnsembleForecast,
	cfg models.TradingConfig,
) (conf int, source models.ConfidenceSource, forecastTemp, spread float64, ok bool) {
	if ens, found := ensByKey[ev.City+"/"+string(ev.Horizon)]; found && ens.Usable() {
		frac := EnsembleBucketConfidence(ens.Members, m.Bucket)
		return int(math.Round(frac * 100)), models.SourceEnsemble, ens.Mean, ens.Spread, true
	}

	cf, found := pointByCity[ev.City]
	if !found {
		return 0, "", 0, 0, false
	}
	point := cf.Today
	sigma := cfg.SigmaToday
	if ev.Horizon == models.HorizonTomorrow {
		point = cf.Tomorrow
		sigma = cfg.SigmaTomorrow
	}

	p := NormalBucketConfidence(point.HighTemp, sigma, m.Bucket)
	conf = int(math.Round(p * 100))
	if conf > cfg.NormalConfidenceCap {
		conf = cfg.NormalConfidenceCap
	}
	return conf, models.SourceNormal, point.HighTemp, 0, true
}

// availableBankroll is the cash balance minus exposure already committed to
// open positions. A failed position fetch degrades to the raw balance.
func (a *Analyzer) availableBankroll(ctx context.Context) (int64, error) {
	balance, err := a.exchange.Balance(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch balance: %w", err)
	}
	positions, err := a.exchange.Positions(ctx)
	if err != nil {
		a.log.Warn("position fetch failed, using raw balance", logger.Error(err))
		return balance, nil
	}
	for _, p := range positions {
		balance -= p.ExposureCents
	}
	if balance < 0 {
		balance = 0
	}
	return balance, nil
}

func (a *Analyzer) cityByCode(code string) (config.City, bool) {
	for _, c := range a.cities {
		if c.Code == code {
			return c, true
		}
	}
	return config.City{}, false
}
