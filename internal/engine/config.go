package engine

import "github.com/Gavin-McEllistrem/trading-simulator/internal/runner"

// DefaultCommandTimeoutMillis is used when Config.CommandTimeoutMillis is
// left at zero.
const DefaultCommandTimeoutMillis = 2000

// Config configures an Engine. Always constructed in Go code; there is no
// file or environment-variable config path in this module.
type Config struct {
	// CommandTimeoutMillis bounds how long RemoveRunner/Stop/Pause/Resume/
	// GetSnapshot/GetHistory (and each runner query made by HealthCheck and
	// Summary) wait for a runner's select loop to reply before giving up.
	CommandTimeoutMillis int64
}

// RunnerConfig is the per-runner configuration passed to AddRunner,
// re-exported here so callers only need to import engine.
type RunnerConfig = runner.Config
