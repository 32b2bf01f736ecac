package gourdianringlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Stats counts what happened to records over the life of a Logger.
type Stats struct {
	Admitted    uint64 // stored in the ring
	Filtered    uint64 // below their subsystem threshold at record time
	Invalid     uint64 // unknown subsystem or non-loggable level
	RateLimited uint64 // rejected by MaxRecordRate
	Paused      uint64 // rejected while paused
	Overwritten uint64 // evicted from a full ring before being flushed
	Truncated   uint64 // shortened to MaxMessageLength-1
	Flushed     uint64 // lines dispatched by Flush, blank lines included
	Blanked     uint64 // below their subsystem threshold at flush time
	SinkErrors  uint64 // errors returned by the display or persistence sink
}

// Logger is a deferred logger: Record stores messages in a fixed-capacity
// ring and Flush renders and dispatches them later, when the caller has
// time to spare.
//
// All state (ring, thresholds, sinks) belongs to the Logger, so several
// independent loggers can coexist. A single mutex serializes Record, Flush
// and threshold changes; sinks are invoked outside of it. Concurrent
// Flush calls run one after the other so lines keep arrival order.
type Logger struct {
	mu               sync.Mutex
	flushMu          sync.Mutex
	ring             *ringBuffer
	thresholds       Thresholds
	stats            Stats
	maxMessageLength int
	skipFiltered     bool

	clock   Clock
	display Sink
	persist Sink

	rateLimiter    *rate.Limiter
	errorHandler   func(error)
	fallbackWriter io.Writer
	paused         atomic.Bool
}

// Option configures the optional capabilities of a Logger.
type Option func(*Logger)

// WithClock sets the time source. Without one, records carry no timestamp
// and lines start with the bracketed level.
func WithClock(clock Clock) Option {
	return func(l *Logger) { l.clock = clock }
}

// WithDisplay sets the sink every flushed line is sent to.
func WithDisplay(sink Sink) Option {
	return func(l *Logger) { l.display = sink }
}

// WithPersistence sets the sink that receives lines of records recorded
// with persist set.
func WithPersistence(sink Sink) Option {
	return func(l *Logger) { l.persist = sink }
}

// WithErrorHandler overrides Config.ErrorHandler.
func WithErrorHandler(fn func(error)) Option {
	return func(l *Logger) { l.errorHandler = fn }
}

// New creates a Logger from config. Every capability is optional: a missing
// clock disables timestamps, a missing display or persistence sink disables
// that output.
//
// Example:
//
//	logger, err := New(DefaultConfig(),
//	    WithClock(SystemClock()),
//	    WithDisplay(WriterSink(os.Stdout)),
//	)
//	if err != nil {
//	    panic(err)
//	}
//	logger.Record(SPI, ERROR, "transfer timeout", true)
//	logger.Flush()
func New(config Config, opts ...Option) (*Logger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Capacity == 0 {
		config.Capacity = defaultCapacity
	}
	if config.MaxMessageLength == 0 {
		config.MaxMessageLength = defaultMaxMessageLength
	}

	logger := &Logger{
		ring:             newRingBuffer(config.Capacity),
		thresholds:       config.thresholds(),
		maxMessageLength: config.MaxMessageLength,
		skipFiltered:     config.SkipFilteredLines,
		errorHandler:     config.ErrorHandler,
	}

	if config.EnableFallback {
		logger.fallbackWriter = os.Stderr
	}

	if config.MaxRecordRate > 0 {
		logger.rateLimiter = rate.NewLimiter(rate.Limit(config.MaxRecordRate), config.MaxRecordRate)
	}

	for _, opt := range opts {
		opt(logger)
	}
	return logger, nil
}

// NewDefault creates a Logger from DefaultConfig.
func NewDefault(opts ...Option) (*Logger, error) {
	return New(DefaultConfig(), opts...)
}

// Record stores a message when level meets the threshold of sub, and
// reports whether it did. A full ring silently drops its oldest record.
// Text longer than the configured maximum is truncated, never rejected.
func (l *Logger) Record(sub Subsystem, level Level, text string, persist bool) bool {
	if l.paused.Load() {
		l.mu.Lock()
		l.stats.Paused++
		l.mu.Unlock()
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !sub.Valid() || !level.Loggable() {
		l.stats.Invalid++
		return false
	}
	if !l.thresholds.Admits(sub, level) {
		l.stats.Filtered++
		return false
	}
	if l.rateLimiter != nil && !l.rateLimiter.Allow() {
		l.stats.RateLimited++
		return false
	}

	msg, truncated := truncateMessage(text, l.maxMessageLength)
	if truncated {
		l.stats.Truncated++
	}

	rec := Record{
		Text:      msg,
		Subsystem: sub,
		Level:     level,
		Persist:   persist,
	}
	if l.clock != nil {
		rec.Timestamp = l.clock.Now()
		rec.Stamped = true
	}

	if err := l.ring.push(rec); errors.Is(err, ErrBufferFull) {
		l.stats.Overwritten++
	}
	l.stats.Admitted++
	return true
}

// Recordf formats its arguments with fmt.Sprintf and records the result.
func (l *Logger) Recordf(sub Subsystem, level Level, persist bool, format string, v ...interface{}) bool {
	return l.Record(sub, level, fmt.Sprintf(format, v...), persist)
}

// Flush drains every pending record in arrival order. Each record is checked
// against the current thresholds again: one that no longer passes renders
// as a bare "\r" (or is skipped with Config.SkipFilteredLines). Every line
// goes to the display sink; lines of records marked persist also go to the
// persistence sink. Flush returns the number of lines dispatched.
//
// Sink errors never stop the drain; they are reported to the error handler.
// A sink may call Record but must not call Flush.
func (l *Logger) Flush() int {
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	lines := 0
	for {
		l.mu.Lock()
		rec, err := l.ring.pop()
		if err != nil {
			l.mu.Unlock()
			return lines
		}
		line, ok := l.render(rec)
		display, persist := l.display, l.persist
		l.mu.Unlock()

		if !ok && l.skipFiltered {
			continue
		}
		lines++
		l.dispatch(display, persist, rec, line)
	}
}

// render applies the drain-time threshold to rec. Caller must hold l.mu.
func (l *Logger) render(rec Record) (string, bool) {
	if !l.thresholds.Admits(rec.Subsystem, rec.Level) {
		l.stats.Blanked++
		return filteredLine, false
	}
	return formatLine(rec, l.maxMessageLength), true
}

func (l *Logger) dispatch(display, persist Sink, rec Record, line string) {
	var failures uint64
	if display != nil {
		if err := display.WriteLine(line); err != nil {
			failures++
			l.handleError(fmt.Errorf("display sink: %w", err))
		}
	}
	if persist != nil && rec.Persist {
		var err error
		if rs, ok := persist.(RecordSink); ok {
			err = rs.WriteRecord(rec, line)
		} else {
			err = persist.WriteLine(line)
		}
		if err != nil {
			failures++
			l.handleError(fmt.Errorf("persistence sink: %w", err))
		}
	}

	l.mu.Lock()
	l.stats.Flushed++
	l.stats.SinkErrors += failures
	l.mu.Unlock()
}

func (l *Logger) handleError(err error) {
	if l.errorHandler != nil {
		l.errorHandler(err)
	} else if l.fallbackWriter != nil {
		fmt.Fprintf(l.fallbackWriter, "RINGLOG ERROR: %v\n", err)
	}
}

// Enabled reports whether a record of level from sub would currently be admitted.
func (l *Logger) Enabled(sub Subsystem, level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.thresholds.Admits(sub, level)
}

// SetThreshold sets the minimum level admitted for sub. The change also
// applies to records already pending.
func (l *Logger) SetThreshold(sub Subsystem, level Level) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.thresholds.Set(sub, level)
}

// Threshold returns the minimum level admitted for sub.
func (l *Logger) Threshold(sub Subsystem) Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.thresholds.Get(sub)
}

// EnableAll admits every level on every subsystem.
func (l *Logger) EnableAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.thresholds.EnableAll()
}

// DisableAll silences every subsystem.
func (l *Logger) DisableAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.thresholds.DisableAll()
}

// EnableSubsystem admits every level on sub.
func (l *Logger) EnableSubsystem(sub Subsystem) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.thresholds.Enable(sub)
}

// DisableSubsystem silences sub.
func (l *Logger) DisableSubsystem(sub Subsystem) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.thresholds.Disable(sub)
}

// Pending returns the number of records waiting for Flush.
func (l *Logger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.len()
}

// Capacity returns the number of records the ring holds.
func (l *Logger) Capacity() int {
	return l.ring.cap()
}

// MaxMessageLength returns the message storage size, terminator included.
func (l *Logger) MaxMessageLength() int {
	return l.maxMessageLength
}

// Stats returns a snapshot of the logger counters.
func (l *Logger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Reset discards every pending record without dispatching it.
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring.reset()
}

// Pause makes Record reject everything until Resume is called.
func (l *Logger) Pause() {
	l.paused.Store(true)
}

func (l *Logger) Resume() {
	l.paused.Store(false)
}

func (l *Logger) IsPaused() bool {
	return l.paused.Load()
}

func (l *Logger) Debug(sub Subsystem, v ...interface{}) {
	l.Record(sub, DEBUG, fmt.Sprint(v...), false)
}

func (l *Logger) Info(sub Subsystem, v ...interface{}) {
	l.Record(sub, INFO, fmt.Sprint(v...), false)
}

func (l *Logger) Warning(sub Subsystem, v ...interface{}) {
	l.Record(sub, WARNING, fmt.Sprint(v...), false)
}

func (l *Logger) Error(sub Subsystem, v ...interface{}) {
	l.Record(sub, ERROR, fmt.Sprint(v...), false)
}

func (l *Logger) Critical(sub Subsystem, v ...interface{}) {
	l.Record(sub, CRITICAL, fmt.Sprint(v...), false)
}

func (l *Logger) Debugf(sub Subsystem, format string, v ...interface{}) {
	l.Recordf(sub, DEBUG, false, format, v...)
}

func (l *Logger) Infof(sub Subsystem, format string, v ...interface{}) {
	l.Recordf(sub, INFO, false, format, v...)
}

func (l *Logger) Warningf(sub Subsystem, format string, v ...interface{}) {
	l.Recordf(sub, WARNING, false, format, v...)
}

func (l *Logger) Errorf(sub Subsystem, format string, v ...interface{}) {
	l.Recordf(sub, ERROR, false, format, v...)
}

func (l *Logger) Criticalf(sub Subsystem, format string, v ...interface{}) {
	l.Recordf(sub, CRITICAL, false, format, v...)
}
