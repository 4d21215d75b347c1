package runner

import (
	"time"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/events"
)

// stats accumulates per-runner counters. It is only ever touched from the
// runner's own goroutine (bar processing happens on the single loop
// goroutine), so no locking is needed: snapshot() is only called from a
// command reply or the RunnerStopped event built on that same goroutine.
type stats struct {
	barsProcessed  int64
	signalsEmitted int64
	errorsObserved int64

	minProcess time.Duration
	maxProcess time.Duration
	sumProcess time.Duration
}

func (s *stats) recordBar(d time.Duration) {
	s.barsProcessed++
	s.sumProcess += d
	if s.minProcess == 0 || d < s.minProcess {
		s.minProcess = d
	}
	if d > s.maxProcess {
		s.maxProcess = d
	}
}

func (s *stats) recordSignal() {
	s.signalsEmitted++
}

func (s *stats) recordError() {
	s.errorsObserved++
}

func (s *stats) snapshot() events.StatsSnapshot {
	var avg time.Duration
	if s.barsProcessed > 0 {
		avg = s.sumProcess / time.Duration(s.barsProcessed)
	}
	return events.StatsSnapshot{
		BarsProcessed:   s.barsProcessed,
		SignalsEmitted:  s.signalsEmitted,
		ErrorsObserved:  s.errorsObserved,
		MinProcessNanos: s.minProcess.Nanoseconds(),
		AvgProcessNanos: avg.Nanoseconds(),
		MaxProcessNanos: s.maxProcess.Nanoseconds(),
	}
}
