package kalshi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"TempQuant/internal/domain/models"
	domsvc "TempQuant/internal/domain/service"
	"TempQuant/internal/service/ratelimit"
	"TempQuant/pkg/config"
	xhttp "TempQuant/pkg/http"
)

const (
	balancePath     = "/trade-api/v2/portfolio/balance"
	positionsPath   = "/trade-api/v2/portfolio/positions"
	ordersPath      = "/trade-api/v2/portfolio/orders"
	settlementsPath = "/trade-api/v2/portfolio/settlements"
)

// ExchangeClient is the authenticated trading surface. Every call is
// signed and classified on failure so callers can branch on the kind.
type ExchangeClient struct {
	baseURL string
	client  *xhttp.Client
	signer  *Signer
	limiter *ratelimit.Limiter
	rate    float64
}

func NewExchangeClient(cfg *config.Config, signer *Signer) *ExchangeClient {
	return &ExchangeClient{
		baseURL: cfg.Exchange.BaseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Exchange.Timeout)),
		signer:  signer,
		limiter: ratelimit.New(),
		rate:    cfg.Exchange.RateLimit,
	}
}

// Balance returns the available cash balance in cents.
func (c *ExchangeClient) Balance(ctx context.Context) (int64, error) {
	var resp struct {
		Balance int64 `json:"balance"`
	}
	if err := c.get(ctx, "balance", balancePath, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// Positions returns open market positions.
func (c *ExchangeClient) Positions(ctx context.Context) ([]models.Position, error) {
	var resp struct {
		MarketPositions []struct {
			Ticker         string `json:"ticker"`
			Position       int    `json:"position"`
			MarketExposure int64  `json:"market_exposure"`
		} `json:"market_positions"`
	}
	if err := c.get(ctx, "positions", positionsPath, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Position, 0, len(resp.MarketPositions))
	for _, p := range resp.MarketPositions {
		if p.Position == 0 {
			continue
		}
		out = append(out, models.Position{
			Ticker:        p.Ticker,
			Contracts:     p.Position,
			ExposureCents: p.MarketExposure,
		})
	}
	return out, nil
}

// CreateOrder submits a limit buy order.
func (c *ExchangeClient) CreateOrder(ctx context.Context, req models.OrderRequest) (models.Order, error) {
	body := map[string]interface{}{
		"ticker":          req.Ticker,
		"action":          "buy",
		"side":            string(req.Side),
		"type":            "limit",
		"count":           req.Count,
		"yes_price":       req.YesPriceCents,
		"client_order_id": req.ClientOrderID,
	}
	var resp struct {
		Order orderJSON `json:"order"`
	}
	if err := c.do(ctx, "create order", xhttp.MethodPost, ordersPath, nil, body, &resp); err != nil {
		return models.Order{}, err
	}
	return resp.Order.toModel(), nil
}

// Orders lists recent orders.
func (c *ExchangeClient) Orders(ctx context.Context) ([]models.Order, error) {
	var resp struct {
		Orders []orderJSON `json:"orders"`
	}
	if err := c.get(ctx, "orders", ordersPath, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		out = append(out, o.toModel())
	}
	return out, nil
}

// Settlements lists settled market outcomes.
func (c *ExchangeClient) Settlements(ctx context.Context) ([]models.Settlement, error) {
	var resp struct {
		Settlements []struct {
			Ticker       string    `json:"ticker"`
			MarketResult string    `json:"market_result"`
			YesCount     int       `json:"yes_count"`
			NoCount      int       `json:"no_count"`
			Revenue      int64     `json:"revenue"`
			SettledTime  time.Time `json:"settled_time"`
		} `json:"settlements"`
	}
	if err := c.get(ctx, "settlements", settlementsPath, map[string][]string{"limit": {"200"}}, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Settlement, 0, len(resp.Settlements))
	for _, s := range resp.Settlements {
		out = append(out, models.Settlement{
			Ticker:       s.Ticker,
			MarketResult: s.MarketResult,
			YesCount:     s.YesCount,
			NoCount:      s.NoCount,
			RevenueCents: s.Revenue,
			SettledTime:  s.SettledTime,
		})
	}
	return out, nil
}

type orderJSON struct {
	OrderID   string `json:"order_id"`
	Ticker    string `json:"ticker"`
	Side      string `json:"side"`
	Status    string `json:"status"`
	FillCount int    `json:"fill_count"`
}

func (o orderJSON) toModel() models.Order {
	return models.Order{
		OrderID:   o.OrderID,
		Ticker:    o.Ticker,
		Side:      models.Side(o.Side),
		Status:    o.Status,
		FillCount: o.FillCount,
	}
}

func (c *ExchangeClient) get(ctx context.Context, op, path string, query map[string][]string, dest interface{}) error {
	return c.do(ctx, op, xhttp.MethodGet, path, query, nil, dest)
}

func (c *ExchangeClient) do(ctx context.Context, op, method, path string, query map[string][]string, body, dest interface{}) error {
	if err := c.wait(ctx); err != nil {
		return &models.ExchangeError{Kind: models.ExchangeTimeout, Op: op, Err: err}
	}
	url := c.baseURL + path
	headers, err := c.signer.Headers(method, url, time.Now())
	if err != nil {
		return &models.ExchangeError{Kind: models.ExchangeAuthError, Op: op, Err: err}
	}
	err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      method,
		URL:         url,
		Headers:     headers,
		QueryParams: query,
		Body:        body,
	}, dest)
	if err != nil {
		return classify(op, err)
	}
	return nil
}

func (c *ExchangeClient) wait(ctx context.Context) error {
	for !c.limiter.Allow("authed", c.rate, c.rate) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

func classify(op string, err error) *models.ExchangeError {
	kind := models.ExchangeGeneric
	switch {
	case errors.Is(err, xhttp.ErrTimeout):
		kind = models.ExchangeTimeout
	case xhttp.IsStatus(err, http.StatusUnauthorized) || xhttp.IsStatus(err, http.StatusForbidden):
		kind = models.ExchangeAuthError
	case xhttp.IsStatus(err, http.StatusTooManyRequests):
		kind = models.ExchangeRateLimited
	}
	return &models.ExchangeError{Kind: kind, Op: op, Err: fmt.Errorf("call exchange: %w", err)}
}

var _ domsvc.Exchange = (*ExchangeClient)(nil)
