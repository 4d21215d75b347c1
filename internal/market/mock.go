// Package market generates synthetic bar streams for local development and
// demos, standing in for a real exchange feed.
package market

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/shopspring/decimal"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/bar"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/engine"
)

// MockFeed drives one or more symbols with a random-walk price series,
// packaging each tick as one Bar (see makeBar for how open/high/low are
// spread around the close) and feeding it into an Engine. It exists for local runs and
// demos; nothing in this module depends on it for correctness.
type MockFeed struct {
	Engine     *engine.Engine
	Log        *zap.Logger
	Symbols    []string
	StartPrice float64
	Step       float64
	Interval   time.Duration
}

// Start launches the feed's generator goroutine and returns immediately.
// The goroutine exits when ctx is cancelled.
func (m *MockFeed) Start(ctx context.Context) {
	if m.Engine == nil {
		m.Log.Error("mock feed: engine not set")
		return
	}
	if len(m.Symbols) == 0 {
		m.Symbols = []string{"BTC-USD"}
	}
	price := m.StartPrice
	if price == 0 {
		price = 100.0
	}
	if m.Step == 0 {
		m.Step = 0.5
	}
	if m.Interval == 0 {
		m.Interval = time.Second
	}

	prices := make(map[string]float64, len(m.Symbols))
	for _, sym := range m.Symbols {
		prices[sym] = price
	}

	go func() {
		t := time.NewTicker(m.Interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case tick := <-t.C:
				for _, sym := range m.Symbols {
					prices[sym] += (rand.Float64()*2 - 1) * m.Step
					if prices[sym] <= 0 {
						prices[sym] = m.Step
					}
					m.Engine.FeedBar(m.makeBar(sym, tick, prices[sym]))
				}
			}
		}
	}()
}

// makeBar synthesizes a single-tick bar around close, with high/low spread
// by a fraction of Step so indicator math that depends on range has
// something other than a flat line to work with.
func (m *MockFeed) makeBar(symbol string, ts time.Time, closePrice float64) bar.Bar {
	spread := m.Step / 4
	high := closePrice + spread
	low := closePrice - spread
	if low < 0 {
		low = 0
	}
	open := closePrice - spread/2

	return bar.Bar{
		Symbol:    symbol,
		Timestamp: ts.UnixMilli(),
		Open:      decimal.NewFromFloat(open),
		High:      decimal.NewFromFloat(high),
		Low:       decimal.NewFromFloat(low),
		Close:     decimal.NewFromFloat(closePrice),
		Volume:    100,
	}
}
