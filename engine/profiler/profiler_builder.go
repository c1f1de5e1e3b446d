package profiler

import "time"

// ProfilerBuilderOption is a functional option applied to a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often statistics are logged.
//
// Parameters:
//   - interval: the logging interval
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval option to a Profiler
func WithUpdateInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = interval
	}
}

// WithStatsSource reports per-frame draw calls and triangles from src. The profiler resets
// the source's counters every tick.
//
// Parameters:
//   - src: the batch statistics source
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the stats source option to a Profiler
func WithStatsSource(src StatsSource) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.source = src
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}
