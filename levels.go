package gourdianringlog

import (
	"fmt"
	"strings"
)

// Level represents the severity of a log record.
// Higher values indicate more severe records.
type Level int32

// Severity levels, ordered from most verbose to most severe.
//
// NONE is a sentinel used only as a threshold: a subsystem whose threshold
// is NONE admits nothing. It is never attached to a record.
const (
	DEBUG Level = iota
	INFO
	WARNING
	ERROR
	CRITICAL
	NONE
)

var levelNames = [...]string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL", "NONE"}

// String returns the display name of the level.
func (l Level) String() string {
	if !l.Valid() {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Valid reports whether l is a member of the level set, NONE included.
func (l Level) Valid() bool {
	return l >= DEBUG && l <= NONE
}

// Loggable reports whether l may be attached to a record.
func (l Level) Loggable() bool {
	return l >= DEBUG && l < NONE
}

// ParseLevel converts a case-insensitive level name to its Level.
//
// "WARN" is accepted for WARNING and "OFF" for NONE.
//
// Example:
//
//	level, err := ParseLevel("warning")
//	if err != nil {
//	    panic(err)
//	}
//	fmt.Println(level) // Output: WARNING
func ParseLevel(level string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARNING", "WARN":
		return WARNING, nil
	case "ERROR":
		return ERROR, nil
	case "CRITICAL":
		return CRITICAL, nil
	case "NONE", "OFF":
		return NONE, nil
	default:
		return DEBUG, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
}
