package strategy

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/bar"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/contextstore"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/fsm"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/indicators"
)

func sampleBar(closeVal string) bar.Bar {
	c := decimal.RequireFromString(closeVal)
	return bar.Bar{
		Symbol:    "BTC-USD",
		Timestamp: 1700000000,
		Open:      c,
		High:      c,
		Low:       c,
		Close:     c,
		Volume:    100,
	}
}

func emptyView() *indicators.View {
	return indicators.NewView(nil, nil, nil, nil)
}

func TestNewHost_LoadsValidScript(t *testing.T) {
	h, err := NewHost("testdata/test_strategy.lua")
	require.NoError(t, err)
	defer h.Close()
	require.Equal(t, "test_strategy", h.Name())
}

func TestNewHost_MissingFile(t *testing.T) {
	_, err := NewHost("testdata/does_not_exist.lua")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrStrategyLoad)
	require.ErrorIs(t, err, ErrStrategyIOError)
}

func TestNewHost_MissingFunctionRejected(t *testing.T) {
	_, err := NewHost("testdata/missing_function.lua")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrStrategyLoad)
	require.ErrorIs(t, err, ErrMissingFunction)
}

func TestHost_DetectOpportunityMergesContext(t *testing.T) {
	h, err := NewHost("testdata/always_long.lua")
	require.NoError(t, err)
	defer h.Close()

	ctx := contextstore.New()
	found, err := h.DetectOpportunity(sampleBar("100"), ctx, emptyView())
	require.NoError(t, err)
	require.True(t, found)

	signal, ok := ctx.String("signal")
	require.True(t, ok)
	require.Equal(t, "bullish", signal)
}

func TestHost_FilterCommitmentDecodesEnterLong(t *testing.T) {
	h, err := NewHost("testdata/always_long.lua")
	require.NoError(t, err)
	defer h.Close()

	ctx := contextstore.New()
	action, err := h.FilterCommitment(sampleBar("100"), ctx, emptyView())
	require.NoError(t, err)
	require.NotNil(t, action)
	require.Equal(t, fsm.EnterLong, action.Kind)
	require.True(t, action.Price.Equal(decimal.RequireFromString("100")))
	require.True(t, action.Quantity.Equal(decimal.RequireFromString("2")))
	require.NotNil(t, action.StopLoss)
	require.NotNil(t, action.TakeProfit)
}

func TestHost_ManagePositionNoAction(t *testing.T) {
	h, err := NewHost("testdata/always_long.lua")
	require.NoError(t, err)
	defer h.Close()

	ctx := contextstore.New()
	ctx.SetNumber("latest_entry_trigger", 1e9) // never triggers the update branch
	action, err := h.ManagePosition(sampleBar("100"), ctx, emptyView())
	require.NoError(t, err)
	require.Nil(t, action)
}

func TestHost_NilReturnFromDetectIsNotAnError(t *testing.T) {
	h, err := NewHost("testdata/test_strategy.lua")
	require.NoError(t, err)
	defer h.Close()

	ctx := contextstore.New()
	found, err := h.DetectOpportunity(sampleBar("50"), ctx, emptyView())
	require.NoError(t, err)
	require.False(t, found)
}

func TestTableToAction_UnknownKindIsStrategyReturnError(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	t1 := L.NewTable()
	t1.RawSetString("action", lua.LString("teleport"))

	_, err := tableToAction(t1)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrStrategyReturn))
}
