package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/engine"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/events"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/market"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/runner"
)

func main() {
	var (
		symbol     = flag.String("symbol", "BTC-USD", "symbol for the demo runner")
		scriptPath = flag.String("script", "internal/strategy/testdata/ema_crossover.lua", "path to the strategy script")
		interval   = flag.Duration("interval", time.Second, "synthetic bar interval")
	)
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting trading simulator")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus()
	defer bus.Close()

	eng := engine.New(engine.Config{}, bus, log)

	runnerID := "demo-" + *symbol
	if err := eng.AddRunner(runner.Config{
		ID:          runnerID,
		Symbol:      *symbol,
		ScriptPath:  *scriptPath,
		StopOnError: false,
	}); err != nil {
		log.Fatal("failed to start runner", zap.Error(err))
	}

	logSubscriberCh, unsubscribe := eng.SubscribeEvents(128)
	go logEvents(log, logSubscriberCh)
	defer unsubscribe()

	feed := &market.MockFeed{
		Engine:     eng,
		Log:        log,
		Symbols:    []string{*symbol},
		StartPrice: 100,
		Step:       0.75,
		Interval:   *interval,
	}
	feed.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := eng.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
}

// logEvents drains the engine's event bus and logs each event at a level
// matching its severity, until the channel is closed (by the deferred
// unsubscribe, or by bus.Close).
func logEvents(log *zap.Logger, ch <-chan events.Event) {
	for ev := range ch {
		fields := []zap.Field{
			zap.String("runner_id", ev.RunnerID),
			zap.String("symbol", ev.Symbol),
			zap.String("kind", string(ev.Kind)),
		}
		switch ev.Kind {
		case events.KindStrategyError, events.KindCriticalError:
			log.Error("runner event", append(fields, zap.Error(ev.Err), zap.String("message", ev.Message))...)
		case events.KindTickReceived:
			log.Debug("runner event", fields...)
		default:
			log.Info("runner event", fields...)
		}
	}
}
