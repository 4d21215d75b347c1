package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/bar"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/contextstore"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/events"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/fsm"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/indicators"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/queue"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/strategy"
)

// Runner drives one symbol's state machine off of one Lua strategy, one bar
// at a time, on a single goroutine. Its loop is a cooperative select over
// two channels — incoming bars and incoming commands — the same shape the
// rest of this codebase uses for its own subscription loop, generalized
// here to also accept control-plane requests without a second goroutine.
type Runner struct {
	id     string
	symbol string
	cfg    Config
	log    *zap.Logger

	bars    *queue.Unbounded[bar.Bar]
	cmdCh   chan Command
	done    chan struct{}
	stopped bool

	startedAt time.Time

	machine *fsm.Machine
	ctx     *contextstore.Store
	window  *bar.Window
	host    *strategy.Host
	sender  events.Sender
	stats   stats

	paused bool
}

// New constructs a Runner. host is owned by the runner from this point on
// and is closed when Run returns.
func New(cfg Config, host *strategy.Host, bus *events.Bus, log *zap.Logger) *Runner {
	capacity := cfg.WindowCapacity
	if capacity <= 0 {
		capacity = DefaultWindowCapacity
	}
	cmdBuffer := cfg.CommandBuffer
	if cmdBuffer <= 0 {
		cmdBuffer = 16
	}

	return &Runner{
		id:      cfg.ID,
		symbol:  cfg.Symbol,
		cfg:     cfg,
		log:     log.With(zap.String("runner_id", cfg.ID), zap.String("symbol", cfg.Symbol)),
		bars:    queue.NewUnbounded[bar.Bar](),
		cmdCh:   make(chan Command, cmdBuffer),
		done:    make(chan struct{}),
		machine: fsm.NewMachine(),
		ctx:     contextstore.New(),
		window:  bar.NewWindow(capacity),
		host:    host,
		sender:  events.NewSender(bus, cfg.ID, cfg.Symbol),
	}
}

// FeedBar enqueues a bar for processing. Never blocks: the underlying
// queue is unbounded, matching the ambient unbounded-producer invariant
// the rest of this module's channels follow.
func (r *Runner) FeedBar(b bar.Bar) {
	r.bars.Send(b)
}

// SendCommand dispatches kind and blocks for its reply or until ctx is
// done, whichever comes first. For CmdStop it also waits, within the same
// ctx, until Run has returned and published its RunnerStopped event.
func (r *Runner) SendCommand(ctx context.Context, kind CommandKind) (CommandResult, error) {
	return r.dispatch(ctx, Command{Kind: kind})
}

// SendHistoryCommand requests the n most recent bars from the runner's
// window, blocking for the reply or until ctx is done.
func (r *Runner) SendHistoryCommand(ctx context.Context, n int) (CommandResult, error) {
	return r.dispatch(ctx, Command{Kind: CmdHistory, HistoryN: n})
}

func (r *Runner) dispatch(ctx context.Context, cmd Command) (CommandResult, error) {
	reply := newReply()
	cmd.Reply = reply

	select {
	case r.cmdCh <- cmd:
	case <-ctx.Done():
		return CommandResult{}, ctx.Err()
	case <-r.done:
		return CommandResult{}, ErrStopped
	}

	select {
	case res := <-reply:
		if cmd.Kind == CmdStop && res.Err == nil {
			select {
			case <-r.done:
			case <-ctx.Done():
				return res, fmt.Errorf("%w: %s", ErrTimeout, ctx.Err())
			}
		}
		return res, res.Err
	case <-ctx.Done():
		return CommandResult{}, fmt.Errorf("%w: %s", ErrTimeout, ctx.Err())
	case <-r.done:
		return CommandResult{}, ErrStopped
	}
}

// Run executes the runner's select loop until ctx is canceled or a Stop
// command is received. It closes done and the bar queue on exit and
// releases the strategy host's Lua VM.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)
	defer r.bars.Close()
	defer r.host.Close()

	r.startedAt = time.Now()
	r.sender.RunnerStarted()
	r.log.Info("runner started")

	var stopReason string
	defer func() {
		r.sender.RunnerStopped(r.stats.snapshot(), stopReason)
		r.log.Info("runner stopped", zap.String("reason", stopReason))
	}()

	for {
		select {
		case <-ctx.Done():
			stopReason = "context canceled"
			return

		case b, ok := <-r.bars.Out():
			if !ok {
				stopReason = "bar channel closed"
				return
			}
			if r.paused {
				continue
			}
			r.processBar(b)
			if r.stopped {
				stopReason = "stop_on_error"
				return
			}

		case cmd := <-r.cmdCh:
			if r.handleCommand(cmd) {
				stopReason = "stop command"
				return
			}
		}
	}
}

func (r *Runner) handleCommand(cmd Command) (stop bool) {
	switch cmd.Kind {
	case CmdPause:
		r.paused = true
		r.sender.RunnerPaused()
		cmd.Reply <- CommandResult{}
		return false

	case CmdResume:
		r.paused = false
		r.sender.RunnerResumed()
		cmd.Reply <- CommandResult{}
		return false

	case CmdStop:
		cmd.Reply <- CommandResult{}
		return true

	case CmdSnapshot:
		cmd.Reply <- CommandResult{Snapshot: r.snapshot()}
		return false

	case CmdHistory:
		cmd.Reply <- CommandResult{Bars: r.window.RecentBars(cmd.HistoryN)}
		return false

	default:
		cmd.Reply <- CommandResult{Err: fmt.Errorf("runner: unknown command %q", cmd.Kind)}
		return false
	}
}

func (r *Runner) snapshot() Snapshot {
	var posView *fsm.View
	if pos, ok := r.machine.Position(); ok {
		v := pos.View()
		posView = &v
	}
	now := time.Now()
	return Snapshot{
		RunnerID:          r.id,
		Symbol:            r.symbol,
		State:             r.machine.State(),
		Status:            r.status(),
		Position:          posView,
		Context:           r.ctx.Snapshot(),
		Stats:             r.stats.snapshot(),
		UptimeSecs:        int64(now.Sub(r.startedAt).Seconds()),
		SnapshotTimestamp: now.Unix(),
	}
}

// status derives the coarse lifecycle state from the runner's internal
// flags: stopped takes priority since a stop-on-error can be set while
// paused was also true.
func (r *Runner) status() Status {
	switch {
	case r.stopped:
		return StatusStopped
	case r.paused:
		return StatusPaused
	default:
		return StatusRunning
	}
}

// processBar runs the full per-bar pipeline: validate, record history,
// evaluate the auto-exit guards against the position as it stood coming
// into this bar, and only if no guard fires, dispatch to the strategy for
// the current state and apply any resulting action. A guard firing closes
// the position and skips the strategy call entirely for this bar — a
// position can never enter and exit within the same tick, since the guard
// that would close it only ever sees positions opened on a prior bar.
func (r *Runner) processBar(b bar.Bar) {
	start := time.Now()
	defer func() { r.stats.recordBar(time.Since(start)) }()

	if err := b.Validate(); err != nil {
		r.stats.recordError()
		r.sender.StrategyError(fmt.Errorf("invalid bar: %w", err))
		if r.cfg.StopOnError {
			r.stopped = true
		}
		return
	}

	r.window.Append(b)
	closeF, _ := b.Close.Float64()
	r.ctx.SetNumber("latest_price", closeF)
	r.ctx.SetInteger("latest_timestamp", b.Timestamp)
	r.sender.TickReceived(b)

	if r.runAutoExitGuard(b) {
		return
	}

	view := r.buildView()
	state := r.machine.State()

	var action *fsm.Action
	var err error

	switch state {
	case fsm.Idle:
		var found bool
		found, err = r.host.DetectOpportunity(b, r.ctx, view)
		if err == nil && found {
			action = &fsm.Action{Kind: fsm.StartAnalyzing, Reason: "strategy signal detected"}
		}
	case fsm.Analyzing:
		action, err = r.host.FilterCommitment(b, r.ctx, view)
	case fsm.InPosition:
		action, err = r.host.ManagePosition(b, r.ctx, view)
	}

	if err != nil {
		r.handleStrategyError(err)
	} else if action != nil {
		r.applyAction(*action, b.Timestamp)
	}
}

func (r *Runner) applyAction(action fsm.Action, now int64) {
	outcome, err := r.machine.Apply(action, now)
	if err != nil {
		r.handleStrategyError(err)
		return
	}
	r.stats.recordSignal()
	r.emitOutcome(outcome)
}

func (r *Runner) emitOutcome(outcome fsm.Outcome) {
	if outcome.StateChanged {
		r.sender.StateChanged(outcome.From, outcome.To, outcome.TransitionReason)
	}
	if outcome.Opened != nil {
		r.sender.PositionOpened(outcome.Opened.View())
	}
	if outcome.PositionMutated {
		if pos, ok := r.machine.Position(); ok {
			r.sender.PositionUpdated(pos.View())
		}
	}
	if outcome.Closed != nil {
		r.sender.PositionClosed(*outcome.Closed)
	}
}

// runAutoExitGuard updates the open position's current price to this bar's
// close and checks the stop-loss/take-profit guards against it, reporting
// whether a guard fired and closed the position. It is a no-op (false) when
// there is no open position.
func (r *Runner) runAutoExitGuard(b bar.Bar) bool {
	changed := r.machine.UpdateCurrentPrice(b.Close)
	if changed {
		if pos, ok := r.machine.Position(); ok {
			r.sender.PositionUpdated(pos.View())
		}
	}
	closed, ok := r.machine.CheckAutoExit(b.Timestamp)
	if !ok {
		return false
	}
	r.sender.PositionClosed(closed)
	r.sender.StateChanged(fsm.InPosition, fsm.Idle, closed.Reason)
	return true
}

func (r *Runner) handleStrategyError(err error) {
	r.stats.recordError()
	r.sender.StrategyError(err)
	r.log.Warn("strategy error", zap.Error(err))
	if r.cfg.StopOnError {
		r.stopped = true
	}
}

func (r *Runner) buildView() *indicators.View {
	bars := r.window.Iter()
	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, bb := range bars {
		c, _ := bb.Close.Float64()
		h, _ := bb.High.Float64()
		l, _ := bb.Low.Float64()
		closes[i] = c
		highs[i] = h
		lows[i] = l
		volumes[i] = float64(bb.Volume)
	}
	return indicators.NewView(closes, highs, lows, volumes)
}
