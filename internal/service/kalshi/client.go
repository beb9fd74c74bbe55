package kalshi

import (
	"context"
	"fmt"
	"time"

	"TempQuant/internal/domain/models"
	domsvc "TempQuant/internal/domain/service"
	"TempQuant/internal/service/ratelimit"
	"TempQuant/pkg/config"
	xhttp "TempQuant/pkg/http"
	"TempQuant/pkg/logger"
)

const marketsPath = "/trade-api/v2/markets"

// Client reads the exchange's public market data. No credentials are
// needed; only the rate limit applies.
type Client struct {
	baseURL string
	cities  []config.City
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	rate    float64
	log     *logger.Logger
}

func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.Exchange.BaseURL,
		cities:  cfg.Cities,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Exchange.Timeout)),
		limiter: ratelimit.New(),
		rate:    cfg.Exchange.RateLimit,
		log:     log,
	}
}

type marketsResponse struct {
	Markets []marketJSON `json:"markets"`
	Cursor  string       `json:"cursor"`
}

type marketJSON struct {
	Ticker      string   `json:"ticker"`
	EventTicker string   `json:"event_ticker"`
	Status      string   `json:"status"`
	YesBid      int      `json:"yes_bid"`
	YesAsk      int      `json:"yes_ask"`
	LastPrice   int      `json:"last_price"`
	Volume      int64    `json:"volume"`
	FloorStrike *float64 `json:"floor_strike"`
	CapStrike   *float64 `json:"cap_strike"`
	Subtitle    string   `json:"subtitle"`
	YesSubTitle string   `json:"yes_sub_title"`
}

// ScanMarkets lists the open temperature markets for every configured city
// over both horizons. Cities whose events are missing or unreadable are
// skipped, never fatal.
func (c *Client) ScanMarkets(ctx context.Context) ([]models.EventMarkets, error) {
	var out []models.EventMarkets
	for _, city := range c.cities {
		loc, err := time.LoadLocation(city.Timezone)
		if err != nil {
			return nil, fmt.Errorf("city %s timezone: %w", city.Code, err)
		}
		local := time.Now().In(loc)
		for _, h := range []struct {
			horizon models.Horizon
			date    time.Time
		}{
			{models.HorizonToday, local},
			{models.HorizonTomorrow, local.AddDate(0, 0, 1)},
		} {
			ev, err := c.eventMarkets(ctx, city, h.horizon, h.date)
			if err != nil {
				if xhttp.IsNotFound(err) {
					continue
				}
				c.log.Warn("market scan skipped event",
					logger.String("city", city.Code),
					logger.String("horizon", string(h.horizon)),
					logger.Error(err))
				continue
			}
			if len(ev.Markets) > 0 {
				out = append(out, ev)
			}
		}
	}
	return out, nil
}

func (c *Client) eventMarkets(ctx context.Context, city config.City, horizon models.Horizon, date time.Time) (models.EventMarkets, error) {
	if err := c.wait(ctx); err != nil {
		return models.EventMarkets{}, err
	}

	eventTicker := EventTicker(city.Series, date)
	var resp marketsResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + marketsPath,
		QueryParams: map[string][]string{
			"event_ticker": {eventTicker},
			"status":       {"open"},
			"limit":        {"100"},
		},
	}, &resp)
	if err != nil {
		return models.EventMarkets{}, fmt.Errorf("list markets %s: %w", eventTicker, err)
	}

	ev := models.EventMarkets{
		City:        city.Code,
		Horizon:     horizon,
		EventTicker: eventTicker,
		Date:        date,
	}
	for _, m := range resp.Markets {
		if m.Status != "open" && m.Status != "active" {
			continue
		}
		subtitle := m.YesSubTitle
		if subtitle == "" {
			subtitle = m.Subtitle
		}
		bucket, ok := ParseBucket(m.FloorStrike, m.CapStrike, subtitle)
		if !ok {
			c.log.Debug("skipping market with unreadable range",
				logger.String("ticker", m.Ticker),
				logger.String("subtitle", subtitle))
			continue
		}
		ev.Markets = append(ev.Markets, models.Market{
			Ticker:      m.Ticker,
			EventTicker: m.EventTicker,
			Bucket:      bucket,
			YesPrice:    yesPrice(m),
			YesBid:      m.YesBid,
			YesAsk:      m.YesAsk,
			Volume:      m.Volume,
			Status:      m.Status,
		})
	}
	return ev, nil
}

// yesPrice picks the working yes price: last trade when one exists,
// otherwise the bid/ask midpoint, otherwise the ask.
func yesPrice(m marketJSON) int {
	if m.LastPrice > 0 {
		return m.LastPrice
	}
	if m.YesBid > 0 && m.YesAsk > 0 {
		return (m.YesBid + m.YesAsk) / 2
	}
	return m.YesAsk
}

// wait blocks until the public rate limiter releases a token or ctx ends.
func (c *Client) wait(ctx context.Context) error {
	for !c.limiter.Allow("public", c.rate, c.rate) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

var _ domsvc.MarketProvider = (*Client)(nil)
