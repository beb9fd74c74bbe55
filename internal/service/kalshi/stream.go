package kalshi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	domsvc "TempQuant/internal/domain/service"
	"TempQuant/pkg/config"
	"TempQuant/pkg/logger"
)

const (
	wsPath         = "/trade-api/ws/v2"
	priceFreshness = 2 * time.Minute
	reconnectDelay = 5 * time.Second

	// A quiet ticker channel is normal; pings keep the read deadline
	// moving so only a dead peer trips it.
	readIdleTimeout = 60 * time.Second
	pingInterval    = 20 * time.Second
	writeWait       = 5 * time.Second
)

// Stream maintains a live yes-price cache from the exchange ticker channel.
// It is optional: when disconnected LastYesPrice simply reports no data and
// callers fall back to the scan snapshot.
type Stream struct {
	wsURL       string
	signer      *Signer
	log         *logger.Logger
	idleTimeout time.Duration
	pingEvery   time.Duration

	mu      sync.RWMutex
	tickers []string
	prices  map[string]pricePoint

	resub chan struct{}
}

type pricePoint struct {
	yesPrice int
	seen     time.Time
}

func NewStream(cfg *config.Config, signer *Signer, log *logger.Logger) *Stream {
	return &Stream{
		wsURL:       cfg.Exchange.WSURL,
		signer:      signer,
		log:         log,
		idleTimeout: readIdleTimeout,
		pingEvery:   pingInterval,
		prices:      make(map[string]pricePoint),
		resub:       make(chan struct{}, 1),
	}
}

// Subscribe replaces the watched ticker set. Called after each market scan.
func (s *Stream) Subscribe(tickers []string) {
	s.mu.Lock()
	s.tickers = append([]string(nil), tickers...)
	s.mu.Unlock()
	select {
	case s.resub <- struct{}{}:
	default:
	}
}

// LastYesPrice returns the freshest streamed yes price for a ticker, or
// false when no recent update exists.
func (s *Stream) LastYesPrice(ticker string) (int, bool) {
	s.mu.RLock()
	p, ok := s.prices[ticker]
	s.mu.RUnlock()
	if !ok || time.Since(p.seen) > priceFreshness {
		return 0, false
	}
	return p.yesPrice, true
}

// Run connects and reads until ctx ends, reconnecting on failure.
func (s *Stream) Run(ctx context.Context) {
	for {
		if err := s.connectAndRead(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn("price stream disconnected", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Stream) connectAndRead(ctx context.Context) error {
	headers, err := s.signer.Headers(http.MethodGet, s.wsURL+wsPath, time.Now())
	if err != nil {
		return err
	}
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL+wsPath, h)
	if err != nil {
		return err
	}
	defer conn.Close()

	// done scopes the helper goroutines to this connection so reconnects
	// do not accumulate watchers.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
	})
	go func() {
		ping := time.NewTicker(s.pingEvery)
		defer ping.Stop()
		for {
			select {
			case <-done:
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	if err := s.sendSubscribe(conn, 1); err != nil {
		return err
	}

	cmdID := 2
	for {
		select {
		case <-s.resub:
			if err := s.sendSubscribe(conn, cmdID); err != nil {
				return err
			}
			cmdID++
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		s.handleMessage(msg)
	}
}

func (s *Stream) sendSubscribe(conn *websocket.Conn, id int) error {
	s.mu.RLock()
	tickers := append([]string(nil), s.tickers...)
	s.mu.RUnlock()
	if len(tickers) == 0 {
		return nil
	}
	return conn.WriteJSON(map[string]interface{}{
		"id":  id,
		"cmd": "subscribe",
		"params": map[string]interface{}{
			"channels":       []string{"ticker"},
			"market_tickers": tickers,
		},
	})
}

type tickerMessage struct {
	Type string `json:"type"`
	Msg  struct {
		MarketTicker string `json:"market_ticker"`
		Price        int    `json:"price"`
		YesBid       int    `json:"yes_bid"`
		YesAsk       int    `json:"yes_ask"`
	} `json:"msg"`
}

func (s *Stream) handleMessage(raw []byte) {
	var m tickerMessage
	if err := json.Unmarshal(raw, &m); err != nil || m.Type != "ticker" {
		return
	}
	price := m.Msg.Price
	if price == 0 && m.Msg.YesBid > 0 && m.Msg.YesAsk > 0 {
		price = (m.Msg.YesBid + m.Msg.YesAsk) / 2
	}
	if price <= 0 || m.Msg.MarketTicker == "" {
		return
	}
	s.mu.Lock()
	s.prices[m.Msg.MarketTicker] = pricePoint{yesPrice: price, seen: time.Now()}
	s.mu.Unlock()
}

var _ domsvc.PriceFeed = (*Stream)(nil)
