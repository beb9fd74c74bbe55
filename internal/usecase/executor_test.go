package usecase

import (
	"context"
	"strings"
	"testing"

	"TempQuant/internal/domain/models"
	domsvc "TempQuant/internal/domain/service"
	"TempQuant/pkg/logger"
)

type stubFeed struct {
	price int
	ok    bool
}

func (f stubFeed) LastYesPrice(string) (int, bool) { return f.price, f.ok }

func execOpp() models.Opportunity {
	return models.Opportunity{
		City:        "NYC",
		Ticker:      "T1",
		EventTicker: "KXHIGHNY-26APR05",
		Bucket:      models.AtMostBucket(40),
		YesPrice:    45,
		LimitPrice:  46,
		Edge:        39,
		Confidence:  84,
		Contracts:   10,
		AmountCents: 450,
	}
}

func newTestExecutor(exchange *fakeExchange, feed stubFeed, useFeed bool, budget *fakeBudgetStore, ledger *fakeLedger) *Executor {
	var pf domsvc.PriceFeed
	if useFeed {
		pf = feed
	}
	return NewExecutor(exchange, pf, budget, ledger, nopEvents{}, nopMetrics{}, logger.Nop())
}

func TestExecuteHappyPath(t *testing.T) {
	exchange := &fakeExchange{}
	budget := &fakeBudgetStore{}
	ledger := &fakeLedger{}
	e := newTestExecutor(exchange, stubFeed{}, false, budget, ledger)

	out := e.Execute(context.Background(), execOpp(), tradingCfg(), "2026-08-31")
	if out.Declined {
		t.Fatalf("unexpected decline: %s", out.Message)
	}
	if out.OrderID == "" || out.SpentCents != 450 {
		t.Fatalf("got %+v", out)
	}
	if budget.state.SpentCents != 450 {
		t.Fatalf("budget %d, want 450", budget.state.SpentCents)
	}
	if len(ledger.recs) != 1 || ledger.recs[0].Settled() {
		t.Fatalf("ledger %+v", ledger.recs)
	}
	// The row's cost must be exactly its price times its contracts.
	rec := ledger.recs[0]
	if rec.PriceCents != 45 || rec.CostCents != int64(rec.PriceCents)*int64(rec.Contracts) {
		t.Fatalf("price %d cost %d contracts %d", rec.PriceCents, rec.CostCents, rec.Contracts)
	}
	if req := exchange.created[0]; req.Side != models.SideYes || req.Count != 10 || req.YesPriceCents != 46 {
		t.Fatalf("order request %+v", req)
	}
	if exchange.created[0].ClientOrderID == "" {
		t.Fatal("client order id required")
	}
}

func TestExecuteValidation(t *testing.T) {
	e := newTestExecutor(&fakeExchange{}, stubFeed{}, false, &fakeBudgetStore{}, &fakeLedger{})
	cfg := tradingCfg()

	tests := []struct {
		name   string
		mutate func(*models.Opportunity)
	}{
		{"empty ticker", func(o *models.Opportunity) { o.Ticker = "" }},
		{"zero amount", func(o *models.Opportunity) { o.AmountCents = 0 }},
		{"bad price", func(o *models.Opportunity) { o.LimitPrice = 0 }},
		{"over max", func(o *models.Opportunity) { o.AmountCents = cfg.MaxTradeCents + 1 }},
		{"no contracts", func(o *models.Opportunity) { o.Contracts = 0 }},
	}
	for _, tt := range tests {
		opp := execOpp()
		tt.mutate(&opp)
		out := e.Execute(context.Background(), opp, cfg, "2026-08-31")
		if !out.Declined {
			t.Fatalf("%s: expected decline", tt.name)
		}
	}
}

func TestExecuteEnforcesDailyBudget(t *testing.T) {
	exchange := &fakeExchange{}
	budget := &fakeBudgetStore{state: models.BudgetState{Date: "2026-08-31", SpentCents: 4800}}
	e := newTestExecutor(exchange, stubFeed{}, false, budget, &fakeLedger{})

	out := e.Execute(context.Background(), execOpp(), tradingCfg(), "2026-08-31")
	if !out.Declined || !strings.Contains(out.Message, "budget") {
		t.Fatalf("got %+v, want budget decline", out)
	}
	if len(exchange.created) != 0 {
		t.Fatal("no network call may happen after a budget decline")
	}
}

func TestExecuteBudgetRollsOverByDay(t *testing.T) {
	// Yesterday's spend does not count against today.
	exchange := &fakeExchange{}
	budget := &fakeBudgetStore{state: models.BudgetState{Date: "2026-08-30", SpentCents: 4800}}
	e := newTestExecutor(exchange, stubFeed{}, false, budget, &fakeLedger{})

	out := e.Execute(context.Background(), execOpp(), tradingCfg(), "2026-08-31")
	if out.Declined {
		t.Fatalf("unexpected decline: %s", out.Message)
	}
}

func TestExecutePriceDriftGuard(t *testing.T) {
	exchange := &fakeExchange{}
	e := newTestExecutor(exchange, stubFeed{price: 60, ok: true}, true, &fakeBudgetStore{}, &fakeLedger{})

	out := e.Execute(context.Background(), execOpp(), tradingCfg(), "2026-08-31")
	if !out.Declined || !strings.Contains(out.Message, "price moved") {
		t.Fatalf("got %+v, want price guard decline", out)
	}
	if len(exchange.created) != 0 {
		t.Fatal("guarded trade must not reach the exchange")
	}
}

func TestExecutePriceGuardAllowsStableQuote(t *testing.T) {
	exchange := &fakeExchange{}
	e := newTestExecutor(exchange, stubFeed{price: 45, ok: true}, true, &fakeBudgetStore{}, &fakeLedger{})

	out := e.Execute(context.Background(), execOpp(), tradingCfg(), "2026-08-31")
	if out.Declined {
		t.Fatalf("stable quote should pass: %s", out.Message)
	}
}

func TestExecuteClassifiedFailures(t *testing.T) {
	tests := []struct {
		kind models.ExchangeErrorKind
		want string
	}{
		{models.ExchangeAuthError, "credentials"},
		{models.ExchangeRateLimited, "rate limit"},
		{models.ExchangeTimeout, "timed out"},
	}
	for _, tt := range tests {
		exchange := &fakeExchange{createErr: &models.ExchangeError{Kind: tt.kind, Op: "create order"}}
		budget := &fakeBudgetStore{}
		e := newTestExecutor(exchange, stubFeed{}, false, budget, &fakeLedger{})

		out := e.Execute(context.Background(), execOpp(), tradingCfg(), "2026-08-31")
		if !out.Declined || !strings.Contains(out.Message, tt.want) {
			t.Fatalf("%s: got %+v, want message containing %q", tt.kind, out, tt.want)
		}
		if budget.state.SpentCents != 0 {
			t.Fatalf("%s: failed submission must not count against budget", tt.kind)
		}
	}
}
