package strategy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/bar"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/contextstore"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/fsm"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/indicators"
)

const (
	fnDetectOpportunity = "detect_opportunity"
	fnFilterCommitment  = "filter_commitment"
	fnManagePosition    = "manage_position"
)

var requiredFunctions = [...]string{fnDetectOpportunity, fnFilterCommitment, fnManagePosition}

// Host owns one Lua VM for exactly one runner's lifetime. Every runner
// embeds its own Host rather than sharing a VM across runners, so a
// misbehaving script can never reach another runner's globals or leak
// state between symbols.
type Host struct {
	l    *lua.LState
	name string
	path string
}

// NewHost loads a script file, validates it defines the three required
// entry points, and returns a ready-to-call Host.
func NewHost(scriptPath string) (*Host, error) {
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %s", ErrStrategyLoad, ErrStrategyIOError, err)
	}

	L := lua.NewState()
	if err := L.DoString(string(src)); err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: %w: %s", ErrStrategyLoad, ErrSyntaxError, err)
	}

	name := strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
	h := &Host{l: L, name: name, path: scriptPath}

	if err := h.validate(); err != nil {
		L.Close()
		return nil, err
	}
	return h, nil
}

func (h *Host) validate() error {
	for _, fn := range requiredFunctions {
		v := h.l.GetGlobal(fn)
		if v.Type() != lua.LTFunction {
			return fmt.Errorf("%w: %w: %s", ErrStrategyLoad, ErrMissingFunction, fn)
		}
	}
	return nil
}

// Name returns the script's file stem, used as the strategy's display name.
func (h *Host) Name() string { return h.name }

// Close releases the underlying Lua VM. Call once the owning runner stops.
func (h *Host) Close() { h.l.Close() }

// DetectOpportunity calls detect_opportunity for the Idle state. A non-nil
// table return merges into ctx and signals an opportunity was found; nil
// means no opportunity this bar.
func (h *Host) DetectOpportunity(b bar.Bar, ctx *contextstore.Store, view *indicators.View) (bool, error) {
	ret, err := h.call(fnDetectOpportunity, b, ctx, view)
	if err != nil {
		return false, err
	}
	t, ok := ret.(*lua.LTable)
	if !ok {
		return false, nil
	}
	mergeContextFromLuaTable(ctx, t)
	return true, nil
}

// FilterCommitment calls filter_commitment for the Analyzing state. A
// non-nil return decodes into an Action the caller should Apply.
func (h *Host) FilterCommitment(b bar.Bar, ctx *contextstore.Store, view *indicators.View) (*fsm.Action, error) {
	return h.callForAction(fnFilterCommitment, b, ctx, view)
}

// ManagePosition calls manage_position for the InPosition state.
func (h *Host) ManagePosition(b bar.Bar, ctx *contextstore.Store, view *indicators.View) (*fsm.Action, error) {
	return h.callForAction(fnManagePosition, b, ctx, view)
}

func (h *Host) callForAction(fn string, b bar.Bar, ctx *contextstore.Store, view *indicators.View) (*fsm.Action, error) {
	ret, err := h.call(fn, b, ctx, view)
	if err != nil {
		return nil, err
	}
	t, ok := ret.(*lua.LTable)
	if !ok {
		return nil, nil
	}
	return tableToAction(t)
}

func (h *Host) call(fn string, b bar.Bar, ctx *contextstore.Store, view *indicators.View) (lua.LValue, error) {
	L := h.l
	f := L.GetGlobal(fn)

	barTable := barToLuaTable(L, b)
	ctxTable := contextToLuaTable(L, ctx)
	indTable := indicatorsToLuaTable(L, view)

	if err := L.CallByParam(lua.P{
		Fn:      f,
		NRet:    1,
		Protect: true,
	}, barTable, ctxTable, indTable); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrStrategyRuntime, fn, err)
	}
	defer L.Pop(1)

	ret := L.Get(-1)
	if ret == lua.LNil {
		return nil, nil
	}
	if _, ok := ret.(*lua.LTable); !ok {
		return nil, fmt.Errorf("%w: %s must return nil or a table", ErrStrategyReturn, fn)
	}
	return ret, nil
}
