package gourdianringlog

import (
	"strings"
	"time"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	lineTerminator  = "\r\n"

	// filteredLine is what a record that fails the drain-time threshold
	// renders to.
	filteredLine = "\r"

	// lineOverhead bounds everything on a line except the message text.
	lineOverhead = 64
)

// formatLine renders rec as a display line:
//
//	2022-08-06 03:53:07, [INFO]	CORE:	Mensaje\r\n
//
// Records without a timestamp omit the leading "time, " field.
func formatLine(rec Record, maxMessageLength int) string {
	var builder strings.Builder
	builder.Grow(maxMessageLength + lineOverhead)

	if rec.Stamped {
		builder.WriteString(time.Unix(rec.Timestamp, 0).UTC().Format(timestampLayout))
		builder.WriteString(", ")
	}
	builder.WriteByte('[')
	builder.WriteString(rec.Level.String())
	builder.WriteString("]\t")
	builder.WriteString(rec.Subsystem.String())
	builder.WriteString(":\t")
	builder.WriteString(rec.Text)
	builder.WriteString(lineTerminator)
	return builder.String()
}
