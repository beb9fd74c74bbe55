package kalshi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TempQuant/internal/domain/models"
	"TempQuant/pkg/config"
)

func exchangeClient(t *testing.T, baseURL string) *ExchangeClient {
	t.Helper()
	cfg := &config.Config{}
	cfg.Exchange.BaseURL = baseURL
	cfg.Exchange.Timeout = 5 * time.Second
	cfg.Exchange.RateLimit = 100
	return NewExchangeClient(cfg, testSigner(t))
}

func TestBalanceSignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, h := range []string{"KALSHI-ACCESS-KEY", "KALSHI-ACCESS-TIMESTAMP", "KALSHI-ACCESS-SIGNATURE"} {
			if r.Header.Get(h) == "" {
				t.Errorf("missing header %s", h)
			}
		}
		if r.URL.Path != "/trade-api/v2/portfolio/balance" {
			t.Errorf("path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"balance": 123456}`)
	}))
	defer srv.Close()

	bal, err := exchangeClient(t, srv.URL).Balance(context.Background())
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal != 123456 {
		t.Fatalf("balance %d", bal)
	}
}

func TestPositionsDropsFlatMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"market_positions": [
  {"ticker": "T1", "position": 10, "market_exposure": 450},
  {"ticker": "T2", "position": 0, "market_exposure": 0}
]}`)
	}))
	defer srv.Close()

	pos, err := exchangeClient(t, srv.URL).Positions(context.Background())
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if len(pos) != 1 || pos[0].Ticker != "T1" || pos[0].ExposureCents != 450 {
		t.Fatalf("positions %+v", pos)
	}
}

func TestCreateOrderBody(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"order": {"order_id": "ORD-1", "ticker": "T1", "side": "yes", "status": "resting", "fill_count": 0}}`)
	}))
	defer srv.Close()

	order, err := exchangeClient(t, srv.URL).CreateOrder(context.Background(), models.OrderRequest{
		Ticker:        "T1",
		Side:          models.SideYes,
		Count:         10,
		YesPriceCents: 46,
		ClientOrderID: "coid-1",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.OrderID != "ORD-1" || order.Status != "resting" {
		t.Fatalf("order %+v", order)
	}
	if body["action"] != "buy" || body["type"] != "limit" || body["side"] != "yes" {
		t.Fatalf("body %v", body)
	}
	if body["count"] != float64(10) || body["yes_price"] != float64(46) {
		t.Fatalf("body %v", body)
	}
	if body["client_order_id"] != "coid-1" {
		t.Fatalf("body %v", body)
	}
}

func TestSettlementsParsesRevenue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "200" {
			t.Errorf("limit %q", r.URL.Query().Get("limit"))
		}
		fmt.Fprint(w, `{"settlements": [
  {"ticker": "T1", "market_result": "yes", "yes_count": 10, "revenue": 1000, "settled_time": "2026-04-05T22:00:00Z"}
]}`)
	}))
	defer srv.Close()

	st, err := exchangeClient(t, srv.URL).Settlements(context.Background())
	if err != nil {
		t.Fatalf("settlements: %v", err)
	}
	if len(st) != 1 || st[0].MarketResult != "yes" || st[0].RevenueCents != 1000 {
		t.Fatalf("settlements %+v", st)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   models.ExchangeErrorKind
	}{
		{http.StatusUnauthorized, models.ExchangeAuthError},
		{http.StatusForbidden, models.ExchangeAuthError},
		{http.StatusTooManyRequests, models.ExchangeRateLimited},
		{http.StatusInternalServerError, models.ExchangeGeneric},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no", tc.status)
		}))
		_, err := exchangeClient(t, srv.URL).Balance(context.Background())
		srv.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		var exErr *models.ExchangeError
		if !errors.As(err, &exErr) {
			t.Fatalf("status %d: error %T not classified", tc.status, err)
		}
		if exErr.Kind != tc.kind {
			t.Fatalf("status %d: kind %v, want %v", tc.status, exErr.Kind, tc.kind)
		}
	}
}
