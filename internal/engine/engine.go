package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/bar"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/events"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/fsm"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/runner"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/strategy"
)

// entry pairs a running Runner with the cancel function of its Run
// goroutine and the symbol it was registered under, so RemoveRunner can
// cancel the runner's context and drop it from the symbol index (and
// Summary can report the symbol) without asking the runner itself.
type entry struct {
	runner *runner.Runner
	cancel context.CancelFunc
	symbol string
}

// Engine is the registry and routing table for every active Runner: one
// mutex-guarded map plus a bus every runner publishes onto, mirroring the
// registry-and-broker shape the strategy engine this was adapted from used
// for its own strategies map, generalized to own full runner lifecycles
// instead of calling into strategies synchronously.
type Engine struct {
	mu      sync.RWMutex
	runners map[string]*entry
	bySym   map[string][]string

	bus *events.Bus
	log *zap.Logger
	cfg Config
}

// New creates an Engine. bus is shared by every runner added to it; the
// caller owns bus's lifetime and should Close it after Shutdown returns.
func New(cfg Config, bus *events.Bus, log *zap.Logger) *Engine {
	if cfg.CommandTimeoutMillis <= 0 {
		cfg.CommandTimeoutMillis = DefaultCommandTimeoutMillis
	}
	return &Engine{
		runners: make(map[string]*entry),
		bySym:   make(map[string][]string),
		bus:     bus,
		log:     log,
		cfg:     cfg,
	}
}

// AddRunner loads the strategy script named in cfg, starts a Runner for it
// on its own goroutine, and registers it under cfg.ID.
func (e *Engine) AddRunner(cfg runner.Config) error {
	e.mu.Lock()
	if _, exists := e.runners[cfg.ID]; exists {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, cfg.ID)
	}
	e.mu.Unlock()

	host, err := strategy.NewHost(cfg.ScriptPath)
	if err != nil {
		return err
	}

	r := runner.New(cfg, host, e.bus, e.log)
	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	e.runners[cfg.ID] = &entry{runner: r, cancel: cancel, symbol: cfg.Symbol}
	e.bySym[cfg.Symbol] = append(e.bySym[cfg.Symbol], cfg.ID)
	e.mu.Unlock()

	go r.Run(ctx)
	return nil
}

// RemoveRunner unregisters a runner, sends it Stop and waits, bounded by
// the command timeout, for its Run goroutine to finish.
func (e *Engine) RemoveRunner(ctx context.Context, id string) error {
	e.mu.Lock()
	ent, ok := e.runners[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(e.runners, id)
	e.bySym[ent.symbol] = removeID(e.bySym[ent.symbol], id)
	e.mu.Unlock()

	tctx, cancel := e.withTimeout(ctx)
	defer cancel()
	_, err := ent.runner.SendCommand(tctx, runner.CmdStop)
	ent.cancel()
	return err
}

// FeedBar routes a bar to every runner currently registered for its
// symbol. Unknown symbols are silently ignored: a bar for a symbol with no
// runner is not an engine-level error.
func (e *Engine) FeedBar(b bar.Bar) {
	e.mu.RLock()
	ids := append([]string(nil), e.bySym[b.Symbol]...)
	e.mu.RUnlock()

	for _, id := range ids {
		e.mu.RLock()
		ent, ok := e.runners[id]
		e.mu.RUnlock()
		if ok {
			ent.runner.FeedBar(b)
		}
	}
}

// RunnersForSymbol returns the IDs of every runner registered for symbol.
func (e *Engine) RunnersForSymbol(symbol string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.bySym[symbol]...)
}

// GetSnapshot returns the named runner's current snapshot.
func (e *Engine) GetSnapshot(ctx context.Context, id string) (runner.Snapshot, error) {
	ent, err := e.lookup(id)
	if err != nil {
		return runner.Snapshot{}, err
	}
	tctx, cancel := e.withTimeout(ctx)
	defer cancel()
	res, err := ent.runner.SendCommand(tctx, runner.CmdSnapshot)
	if err != nil {
		return runner.Snapshot{}, err
	}
	return res.Snapshot, nil
}

// GetHistory copies the last n bars from the named runner's window, oldest
// first. n is clamped to however many bars the window currently holds; it
// is never an error to ask for more than are available.
func (e *Engine) GetHistory(ctx context.Context, id string, n int) ([]bar.Bar, error) {
	ent, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	tctx, cancel := e.withTimeout(ctx)
	defer cancel()
	res, err := ent.runner.SendHistoryCommand(tctx, n)
	if err != nil {
		return nil, err
	}
	return res.Bars, nil
}

// Pause pauses the named runner.
func (e *Engine) Pause(ctx context.Context, id string) error {
	return e.simpleCommand(ctx, id, runner.CmdPause)
}

// Resume resumes the named runner.
func (e *Engine) Resume(ctx context.Context, id string) error {
	return e.simpleCommand(ctx, id, runner.CmdResume)
}

// Stop stops and unregisters the named runner; equivalent to RemoveRunner.
func (e *Engine) Stop(ctx context.Context, id string) error {
	return e.RemoveRunner(ctx, id)
}

func (e *Engine) simpleCommand(ctx context.Context, id string, kind runner.CommandKind) error {
	ent, err := e.lookup(id)
	if err != nil {
		return err
	}
	tctx, cancel := e.withTimeout(ctx)
	defer cancel()
	_, err = ent.runner.SendCommand(tctx, kind)
	return err
}

func (e *Engine) lookup(id string) (*entry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ent, ok := e.runners[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return ent, nil
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(e.cfg.CommandTimeoutMillis)*time.Millisecond)
}

// SubscribeEvents registers a new listener on the shared event bus.
func (e *Engine) SubscribeEvents(buffer int) (<-chan events.Event, func()) {
	return e.bus.Subscribe(buffer)
}

// RunnerSummary is one runner's contribution to an EngineSummary.
type RunnerSummary struct {
	ID            string
	Symbol        string
	State         fsm.State
	UptimeSecs    int64
	BarsProcessed int64
}

// EngineSummary aggregates every registered runner's snapshot into a single
// engine-wide view: how many runners exist, how they're distributed across
// symbols, and each one's uptime and processed-bar count.
type EngineSummary struct {
	RunnerCount int
	BySymbol    map[string]int
	Runners     []RunnerSummary
}

// HealthCheck reports, for every registered runner ID, whether a snapshot
// command round-trip currently succeeds — a cheap per-runner liveness
// signal distinct from the richer Summary.
func (e *Engine) HealthCheck(ctx context.Context) map[string]bool {
	ids, ents := e.snapshotEntries()

	health := make(map[string]bool, len(ids))
	for i, id := range ids {
		tctx, cancel := e.withTimeout(ctx)
		_, err := ents[i].runner.SendCommand(tctx, runner.CmdSnapshot)
		cancel()
		health[id] = err == nil
	}
	return health
}

// Summary polls every registered runner for its current snapshot and
// aggregates the results.
func (e *Engine) Summary(ctx context.Context) EngineSummary {
	ids, ents := e.snapshotEntries()

	e.mu.RLock()
	bySym := make(map[string]int, len(e.bySym))
	for sym, symIDs := range e.bySym {
		bySym[sym] = len(symIDs)
	}
	e.mu.RUnlock()

	runners := make([]RunnerSummary, 0, len(ids))
	for i, id := range ids {
		tctx, cancel := e.withTimeout(ctx)
		res, err := ents[i].runner.SendCommand(tctx, runner.CmdSnapshot)
		cancel()
		if err != nil {
			continue
		}
		runners = append(runners, RunnerSummary{
			ID:            id,
			Symbol:        ents[i].symbol,
			State:         res.Snapshot.State,
			UptimeSecs:    res.Snapshot.UptimeSecs,
			BarsProcessed: res.Snapshot.Stats.BarsProcessed,
		})
	}

	return EngineSummary{RunnerCount: len(ids), BySymbol: bySym, Runners: runners}
}

func (e *Engine) snapshotEntries() ([]string, []*entry) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.runners))
	ents := make([]*entry, 0, len(e.runners))
	for id, ent := range e.runners {
		ids = append(ids, id)
		ents = append(ents, ent)
	}
	return ids, ents
}

// Shutdown stops every registered runner concurrently, collecting the
// first error via errgroup rather than stopping serially.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	ids := make([]string, 0, len(e.runners))
	for id := range e.runners {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			return e.RemoveRunner(gctx, id)
		})
	}
	return g.Wait()
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
