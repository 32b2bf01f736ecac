package gourdianringlog

import (
	"errors"
	"io"
	"time"
)

// Clock supplies the timestamp stamped on a record at admission, in seconds
// since the Unix epoch (or any monotonically meaningful counter).
type Clock interface {
	Now() int64
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() int64

func (f ClockFunc) Now() int64 { return f() }

type systemClock struct{}

func (systemClock) Now() int64 { return time.Now().Unix() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// Sink consumes formatted lines during Flush. It is used both for the
// display/transport output and for persistent storage.
type Sink interface {
	WriteLine(line string) error
}

// RecordSink is a Sink that also wants the record a line was rendered from.
// When the persistence sink implements it, Flush calls WriteRecord instead
// of WriteLine.
type RecordSink interface {
	Sink
	WriteRecord(rec Record, line string) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(line string) error

func (f SinkFunc) WriteLine(line string) error { return f(line) }

type writerSink struct {
	w io.Writer
}

func (s writerSink) WriteLine(line string) error {
	_, err := io.WriteString(s.w, line)
	return err
}

// WriterSink returns a Sink writing every line verbatim to w.
func WriterSink(w io.Writer) Sink {
	if w == nil {
		return nil
	}
	return writerSink{w: w}
}

// NopSink discards every line.
var NopSink Sink = SinkFunc(func(string) error { return nil })

type multiSink struct {
	sinks []Sink
}

// MultiSink fans every line out to all non-nil sinks. Record-aware sinks
// receive WriteRecord calls. Every sink is tried; their errors are joined.
func MultiSink(sinks ...Sink) Sink {
	valid := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			valid = append(valid, s)
		}
	}
	return &multiSink{sinks: valid}
}

func (m *multiSink) WriteLine(line string) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.WriteLine(line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiSink) WriteRecord(rec Record, line string) error {
	var errs []error
	for _, s := range m.sinks {
		var err error
		if rs, ok := s.(RecordSink); ok {
			err = rs.WriteRecord(rec, line)
		} else {
			err = s.WriteLine(line)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
