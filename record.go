package gourdianringlog

import (
	"strings"
	"unicode/utf8"
)

// Record is a single pending log message. It is copied by value into and
// out of the ring; nothing in it is shared.
type Record struct {
	Text      string
	Subsystem Subsystem
	Level     Level
	// Timestamp is the clock reading taken at admission, in seconds since
	// the Unix epoch. It is meaningful only when Stamped is true.
	Timestamp int64
	Stamped   bool
	Persist   bool
}

// truncateMessage bounds text to maxLen-1 bytes, the last slot being kept
// for the terminator the line format implies. Text after an embedded NUL is
// dropped. The cut never splits a UTF-8 sequence.
func truncateMessage(text string, maxLen int) (string, bool) {
	truncated := false
	if i := strings.IndexByte(text, 0); i >= 0 {
		text = text[:i]
		truncated = true
	}

	limit := maxLen - 1
	if limit < 0 {
		limit = 0
	}
	if len(text) <= limit {
		return text, truncated
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut], true
}
