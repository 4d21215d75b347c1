package strategy

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/bar"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/contextstore"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/indicators"
)

// barToLuaTable marshals a Bar into the table scripts see as their first
// argument: plain fields, all converted to float64/string/int64 since Lua
// has no decimal type.
func barToLuaTable(L *lua.LState, b bar.Bar) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("symbol", lua.LString(b.Symbol))
	t.RawSetString("timestamp", lua.LNumber(b.Timestamp))
	open, _ := b.Open.Float64()
	high, _ := b.High.Float64()
	low, _ := b.Low.Float64()
	closeP, _ := b.Close.Float64()
	t.RawSetString("open", lua.LNumber(open))
	t.RawSetString("high", lua.LNumber(high))
	t.RawSetString("low", lua.LNumber(low))
	t.RawSetString("close", lua.LNumber(closeP))
	t.RawSetString("volume", lua.LNumber(b.Volume))
	if b.HasQuote() {
		bid, _ := b.Bid.Float64()
		ask, _ := b.Ask.Float64()
		t.RawSetString("bid", lua.LNumber(bid))
		t.RawSetString("ask", lua.LNumber(ask))
		mid, _ := b.MidPrice().Float64()
		t.RawSetString("mid_price", lua.LNumber(mid))
	}
	return t
}

// contextToLuaTable flattens every typed map in a Store into one Lua
// table. Keys are disjoint across the four maps by construction (Store
// evicts a key from the other three before setting it in one), so there is
// no collision to resolve.
func contextToLuaTable(L *lua.LState, store *contextstore.Store) *lua.LTable {
	t := L.NewTable()
	snap := store.Snapshot()
	for k, v := range snap.Numbers {
		t.RawSetString(k, lua.LNumber(v))
	}
	for k, v := range snap.Integers {
		t.RawSetString(k, lua.LNumber(v))
	}
	for k, v := range snap.Strings {
		t.RawSetString(k, lua.LString(v))
	}
	for k, v := range snap.Booleans {
		t.RawSetString(k, lua.LBool(v))
	}
	return t
}

// indicatorsToLuaTable exposes an indicators.View as callable closures
// (sma/ema/rsi, each period -> number or nil) plus precomputed scalar
// fields for high/low/range/avg_volume, mirroring the shape scripts expect
// from the reference EMA-crossover style strategy.
func indicatorsToLuaTable(L *lua.LState, view *indicators.View) *lua.LTable {
	t := L.NewTable()

	t.RawSetString("sma", L.NewFunction(func(L *lua.LState) int {
		period := L.CheckInt(1)
		v, ok := view.SMA(period)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(v))
		return 1
	}))

	t.RawSetString("ema", L.NewFunction(func(L *lua.LState) int {
		period := L.CheckInt(1)
		v, ok := view.EMA(period)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(v))
		return 1
	}))

	t.RawSetString("rsi", L.NewFunction(func(L *lua.LState) int {
		period := L.CheckInt(1)
		v, ok := view.RSI(period)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(v))
		return 1
	}))

	high, _ := view.High(view.Len())
	low, _ := view.Low(view.Len())
	rng, _ := view.Range(view.Len())
	avgVol, _ := view.AvgVolume(view.Len())
	t.RawSetString("high", lua.LNumber(high))
	t.RawSetString("low", lua.LNumber(low))
	t.RawSetString("range", lua.LNumber(rng))
	t.RawSetString("avg_volume", lua.LNumber(avgVol))

	return t
}
