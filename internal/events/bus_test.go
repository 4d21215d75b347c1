package events

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/bar"
)

func minimalBar() bar.Bar {
	price := decimal.NewFromInt(100)
	return bar.Bar{
		Symbol:    "BTC-USD",
		Timestamp: 1,
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		Volume:    1,
	}
}

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe(4)
	defer unsub()

	sender := NewSender(bus, "runner-1", "BTC-USD")
	sender.RunnerStarted()

	require.Eventually(t, func() bool {
		select {
		case ev := <-ch:
			return ev.Kind == KindRunnerStarted && ev.RunnerID == "runner-1"
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestBus_NonCriticalEventsDropUnderBackpressure(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe(1) // tiny buffer, never drained
	defer unsub()

	sender := NewSender(bus, "runner-1", "BTC-USD")
	for i := 0; i < 50; i++ {
		sender.TickReceived(minimalBar())
	}

	require.Never(t, func() bool {
		return len(ch) > 1
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestBus_CriticalEventsAreDeliveredEvenIfSlow(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe(1)
	defer unsub()

	sender := NewSender(bus, "runner-1", "BTC-USD")
	sender.CriticalError(errors.New("boom"), "test")

	require.Eventually(t, func() bool {
		ev, ok := <-ch
		return ok && ev.Kind == KindCriticalError
	}, time.Second, time.Millisecond)
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe(1)
	unsub()

	_, ok := <-ch
	require.False(t, ok)
}
