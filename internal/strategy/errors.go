package strategy

import "errors"

// ErrStrategyLoad wraps every failure that can occur while loading a
// script: a missing file, a syntax error, or a script missing one of the
// three required entry points.
var ErrStrategyLoad = errors.New("strategy: failed to load script")

// ErrMissingFunction means the script compiled but does not define one of
// detect_opportunity, filter_commitment, or manage_position.
var ErrMissingFunction = errors.New("strategy: script missing required function")

// ErrSyntaxError means the script failed to parse.
var ErrSyntaxError = errors.New("strategy: script syntax error")

// ErrStrategyIOError means the script file could not be read.
var ErrStrategyIOError = errors.New("strategy: script file could not be read")

// ErrStrategyRuntime wraps a Lua runtime error raised while calling into a
// loaded script (a Lua-level error() call, a nil index, etc).
var ErrStrategyRuntime = errors.New("strategy: runtime error in script")

// ErrStrategyReturn means a script function returned a value of the wrong
// shape (e.g. detect_opportunity returning a number instead of nil/table).
var ErrStrategyReturn = errors.New("strategy: script returned an invalid value")
