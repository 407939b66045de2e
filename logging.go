package morpheus

import (
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// LogLevel is the severity of a [LogEntry].
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LogEntry is a single structured log event emitted by non-fast-path
// state transitions: registration, deregistration, and defensive-mode
// entry and recovery. The checkpoint fast path (no hint, no sequence
// gap) never constructs one of these: logging must not cost the hot
// path.
type LogEntry struct {
	Level    LogLevel
	Category string // "registry" or "pressure"
	WorkerID uint32
	Message  string
	Err      error
}

// Logger is the structured logging interface Morpheus components log
// through, so a package-level default, a no-op stub, or a real backend
// all slot in without change.
type Logger interface {
	Log(entry LogEntry)
	IsEnabled(level LogLevel) bool
}

// NewNoOpLogger returns a Logger that discards everything. This is the
// default for a Registry that never calls WithLogger: an unconfigured
// registry never raises and never costs the caller anything for
// logging.
func NewNoOpLogger() Logger { return noOpLogger{} }

type noOpLogger struct{}

func (noOpLogger) Log(LogEntry) {}

func (noOpLogger) IsEnabled(LogLevel) bool { return false }

// LogifaceAdapter adapts a caller-supplied *logiface.Logger[E] (backed
// by whatever sink the caller chooses — stumpy, zerolog, logrus, via
// the corresponding logiface/* adapter module in the same monorepo)
// into Morpheus's [Logger] interface. This is the domain-stack wiring
// point for github.com/joeycumines/logiface: callers who want
// structured, leveled logs for registration/defensive-mode/escalation
// events construct a *logiface.Logger[E] themselves and wrap it here.
type LogifaceAdapter[E logiface.Event] struct {
	L     *logiface.Logger[E]
	level atomic.Int32
}

// NewLogifaceAdapter wraps l, logging at minLevel and above.
func NewLogifaceAdapter[E logiface.Event](l *logiface.Logger[E], minLevel LogLevel) *LogifaceAdapter[E] {
	a := &LogifaceAdapter[E]{L: l}
	a.level.Store(int32(minLevel))
	return a
}

func (a *LogifaceAdapter[E]) IsEnabled(level LogLevel) bool {
	return level >= LogLevel(a.level.Load())
}

func (a *LogifaceAdapter[E]) Log(entry LogEntry) {
	if !a.IsEnabled(entry.Level) {
		return
	}
	var b *logiface.Builder[E]
	switch entry.Level {
	case LevelDebug:
		b = a.L.Debug()
	case LevelWarn:
		b = a.L.Warning()
	case LevelError:
		b = a.L.Err()
	default:
		b = a.L.Info()
	}
	b = b.Str("category", entry.Category).Uint64("worker_id", uint64(entry.WorkerID))
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(entry.Message)
}
