package pebblesink

import (
	"github.com/ugorji/go/codec"

	"github.com/gourdian25/gourdianringlog"
)

var msgpackHandle codec.MsgpackHandle

// Entry is one persisted record as stored in Pebble.
type Entry struct {
	Session   string `codec:"session"`
	Seq       uint64 `codec:"seq"`
	Timestamp int64  `codec:"ts"`
	Stamped   bool   `codec:"stamped"`
	Level     string `codec:"level"`
	Subsystem string `codec:"subsystem"`
	Text      string `codec:"text"`
	Line      string `codec:"line"`
	// Structured is false for entries written through WriteLine, which only
	// carry the rendered line.
	Structured bool `codec:"structured"`
}

// Severity returns the numeric level of the entry, or -1 when unknown.
func (e Entry) Severity() int {
	lvl, err := gourdianringlog.ParseLevel(e.Level)
	if err != nil || !e.Structured {
		return -1
	}
	return int(lvl)
}

func encodeEntry(e *Entry) ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, &msgpackHandle).Encode(e); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	err := codec.NewDecoderBytes(data, &msgpackHandle).Decode(&e)
	return e, err
}

func entryFromRecord(rec gourdianringlog.Record, line string) Entry {
	return Entry{
		Timestamp:  rec.Timestamp,
		Stamped:    rec.Stamped,
		Level:      rec.Level.String(),
		Subsystem:  rec.Subsystem.String(),
		Text:       rec.Text,
		Line:       line,
		Structured: true,
	}
}
