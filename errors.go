package gourdianringlog

import "errors"

var (
	// ErrBufferFull is returned by the ring when a push evicted the oldest record.
	ErrBufferFull = errors.New("ring buffer full, oldest record overwritten")
	// ErrBufferEmpty is returned by the ring when there is nothing to pop.
	ErrBufferEmpty = errors.New("ring buffer empty")

	ErrInvalidLevel     = errors.New("invalid log level")
	ErrInvalidSubsystem = errors.New("invalid subsystem")
	ErrInvalidConfig    = errors.New("invalid config")
)
