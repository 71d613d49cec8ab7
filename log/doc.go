// Package log provides the leveled logging interface used across coursectx.
//
// Components such as the hierarchical manager and the catalog ingester accept
// a Logger at construction time instead of reaching for process-wide state.
// Two implementations are provided:
//
//   - DefaultLogger writes to an io.Writer through the standard library logger
//   - GologLogger forwards to a github.com/kataras/golog logger
//
// # Log Levels
//
//   - LogLevelDebug: per-record storage activity
//   - LogLevelInfo: batch progress and lifecycle events
//   - LogLevelWarn: partial misses, quarantined records, rollbacks
//   - LogLevelError: failed writes and failed searches
//   - LogLevelNone: disables all output
//
// # Example
//
//	logger := log.NewGologLogger(golog.New())
//	logger.SetLevel(log.ParseLevel("debug"))
//
//	manager := hierarchy.NewManager(embedder, summaries, details, codes,
//		hierarchy.WithLogger(logger))
package log
