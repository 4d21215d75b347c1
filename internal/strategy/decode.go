package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"
	lua "github.com/yuin/gopher-lua"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/contextstore"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/fsm"
)

// mergeContextFromLuaTable copies every key a script set in the table it
// returned from detect_opportunity back into the context store, so the
// decision survives into the Analyzing state's filter_commitment call.
// Keys of unsupported Lua types (tables, functions) are ignored rather than
// treated as an error.
func mergeContextFromLuaTable(store *contextstore.Store, t *lua.LTable) {
	t.ForEach(func(key, value lua.LValue) {
		k, ok := key.(lua.LString)
		if !ok {
			return
		}
		switch v := value.(type) {
		case lua.LNumber:
			store.SetNumber(string(k), float64(v))
		case lua.LString:
			store.SetString(string(k), string(v))
		case lua.LBool:
			store.SetBool(string(k), bool(v))
		}
	})
}

// tableToAction decodes an action table returned by filter_commitment or
// manage_position into a typed Action. A table whose "action" field is an
// unrecognized string is a script-return error, not a runtime panic.
func tableToAction(t *lua.LTable) (*fsm.Action, error) {
	kindVal := t.RawGetString("action")
	kindStr, ok := kindVal.(lua.LString)
	if !ok {
		return nil, fmt.Errorf("%w: action field must be a string", ErrStrategyReturn)
	}

	switch string(kindStr) {
	case "enter_long", "enter_short":
		price, err := requireNumber(t, "price")
		if err != nil {
			return nil, err
		}
		qty, err := requireNumber(t, "quantity")
		if err != nil {
			return nil, err
		}
		action := &fsm.Action{
			Price:    decimal.NewFromFloat(price),
			Quantity: decimal.NewFromFloat(qty),
		}
		if string(kindStr) == "enter_long" {
			action.Kind = fsm.EnterLong
		} else {
			action.Kind = fsm.EnterShort
		}
		if sl, ok := optionalNumber(t, "stop_loss"); ok {
			d := decimal.NewFromFloat(sl)
			action.StopLoss = &d
		}
		if tp, ok := optionalNumber(t, "take_profit"); ok {
			d := decimal.NewFromFloat(tp)
			action.TakeProfit = &d
		}
		return action, nil

	case "exit":
		price, err := requireNumber(t, "price")
		if err != nil {
			return nil, err
		}
		return &fsm.Action{
			Kind:      fsm.ExitPosition,
			ExitPrice: decimal.NewFromFloat(price),
			Reason:    optionalString(t, "reason", "strategy exit"),
		}, nil

	case "update_stop_loss":
		newStop, err := requireNumber(t, "new_stop")
		if err != nil {
			return nil, err
		}
		return &fsm.Action{
			Kind:    fsm.UpdateStopLoss,
			NewStop: decimal.NewFromFloat(newStop),
		}, nil

	case "update_take_profit":
		newTarget, err := requireNumber(t, "new_target")
		if err != nil {
			return nil, err
		}
		return &fsm.Action{
			Kind:      fsm.UpdateTakeProfit,
			NewTarget: decimal.NewFromFloat(newTarget),
		}, nil

	case "start_analyzing":
		return &fsm.Action{
			Kind:   fsm.StartAnalyzing,
			Reason: optionalString(t, "reason", "strategy signal"),
		}, nil

	case "cancel_analysis":
		return &fsm.Action{
			Kind:   fsm.CancelAnalysis,
			Reason: optionalString(t, "reason", "conditions not met"),
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown action type %q", ErrStrategyReturn, string(kindStr))
	}
}

func requireNumber(t *lua.LTable, field string) (float64, error) {
	v, ok := optionalNumber(t, field)
	if !ok {
		return 0, fmt.Errorf("%w: missing or non-numeric field %q", ErrStrategyReturn, field)
	}
	return v, nil
}

func optionalNumber(t *lua.LTable, field string) (float64, bool) {
	v := t.RawGetString(field)
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, false
	}
	return float64(n), true
}

func optionalString(t *lua.LTable, field, fallback string) string {
	v := t.RawGetString(field)
	s, ok := v.(lua.LString)
	if !ok {
		return fallback
	}
	return string(s)
}
