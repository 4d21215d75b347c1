package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/bar"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/events"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/runner"
)

func newTestEngine(t *testing.T) (*Engine, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	t.Cleanup(bus.Close)
	return New(Config{}, bus, zap.NewNop()), bus
}

func TestEngine_AddRunnerRejectsDuplicateID(t *testing.T) {
	e, _ := newTestEngine(t)
	cfg := runner.Config{ID: "r1", Symbol: "BTC-USD", ScriptPath: "../strategy/testdata/test_strategy.lua"}

	require.NoError(t, e.AddRunner(cfg))
	err := e.AddRunner(cfg)
	require.ErrorIs(t, err, ErrDuplicateID)

	require.NoError(t, e.Stop(context.Background(), "r1"))
}

func TestEngine_FeedBarRoutesBySymbol(t *testing.T) {
	e, _ := newTestEngine(t)
	cfg := runner.Config{ID: "r1", Symbol: "BTC-USD", ScriptPath: "../strategy/testdata/test_strategy.lua"}
	require.NoError(t, e.AddRunner(cfg))
	defer e.Stop(context.Background(), "r1")

	price := decimal.NewFromInt(100)
	e.FeedBar(bar.Bar{Symbol: "BTC-USD", Timestamp: 1, Open: price, High: price, Low: price, Close: price, Volume: 1})
	e.FeedBar(bar.Bar{Symbol: "ETH-USD", Timestamp: 1, Open: price, High: price, Low: price, Close: price, Volume: 1}) // unrouted, no runner

	require.Eventually(t, func() bool {
		snap, err := e.GetSnapshot(context.Background(), "r1")
		return err == nil && snap.Stats.BarsProcessed == 1
	}, time.Second, 10*time.Millisecond)
}

func TestEngine_GetSnapshotUnknownID(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.GetSnapshot(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_PauseResume(t *testing.T) {
	e, _ := newTestEngine(t)
	cfg := runner.Config{ID: "r1", Symbol: "BTC-USD", ScriptPath: "../strategy/testdata/test_strategy.lua"}
	require.NoError(t, e.AddRunner(cfg))
	defer e.Stop(context.Background(), "r1")

	require.NoError(t, e.Pause(context.Background(), "r1"))
	snap, err := e.GetSnapshot(context.Background(), "r1")
	require.NoError(t, err)
	require.Equal(t, runner.StatusPaused, snap.Status)

	require.NoError(t, e.Resume(context.Background(), "r1"))
	snap, err = e.GetSnapshot(context.Background(), "r1")
	require.NoError(t, err)
	require.Equal(t, runner.StatusRunning, snap.Status)
}

func TestEngine_GetHistoryClamps(t *testing.T) {
	e, _ := newTestEngine(t)
	cfg := runner.Config{ID: "r1", Symbol: "BTC-USD", ScriptPath: "../strategy/testdata/test_strategy.lua"}
	require.NoError(t, e.AddRunner(cfg))
	defer e.Stop(context.Background(), "r1")

	price := decimal.NewFromInt(100)
	e.FeedBar(bar.Bar{Symbol: "BTC-USD", Timestamp: 1, Open: price, High: price, Low: price, Close: price, Volume: 1})
	e.FeedBar(bar.Bar{Symbol: "BTC-USD", Timestamp: 2, Open: price, High: price, Low: price, Close: price, Volume: 1})

	require.Eventually(t, func() bool {
		snap, err := e.GetSnapshot(context.Background(), "r1")
		return err == nil && snap.Stats.BarsProcessed == 2
	}, time.Second, 10*time.Millisecond)

	bars, err := e.GetHistory(context.Background(), "r1", 10)
	require.NoError(t, err)
	require.Len(t, bars, 2)
}

func TestEngine_SummaryReportsPerRunnerDetail(t *testing.T) {
	e, _ := newTestEngine(t)
	cfg := runner.Config{ID: "r1", Symbol: "BTC-USD", ScriptPath: "../strategy/testdata/test_strategy.lua"}
	require.NoError(t, e.AddRunner(cfg))
	defer e.Stop(context.Background(), "r1")

	summary := e.Summary(context.Background())
	require.Equal(t, 1, summary.RunnerCount)
	require.Equal(t, 1, summary.BySymbol["BTC-USD"])
	require.Len(t, summary.Runners, 1)
	require.Equal(t, "r1", summary.Runners[0].ID)
}

func TestEngine_ShutdownStopsAllRunners(t *testing.T) {
	e, _ := newTestEngine(t)
	for _, id := range []string{"r1", "r2"} {
		cfg := runner.Config{ID: id, Symbol: "BTC-USD", ScriptPath: "../strategy/testdata/test_strategy.lua"}
		require.NoError(t, e.AddRunner(cfg))
	}

	require.NoError(t, e.Shutdown(context.Background()))

	health := e.HealthCheck(context.Background())
	require.Empty(t, health)
}
