package pebblesink

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gourdian25/gourdianringlog"
)

func newTestSink(t *testing.T, dir string) *Sink {
	t.Helper()
	sink, err := Open(Options{DataDir: dir, Fsync: FsyncModeInterval, FsyncInterval: 2 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })
	return sink
}

func collect(t *testing.T, sink *Sink) []Entry {
	t.Helper()
	var out []Entry
	require.NoError(t, sink.Scan(func(e Entry) error {
		out = append(out, e)
		return nil
	}))
	return out
}

func TestOpenRequiresDataDir(t *testing.T) {
	_, err := Open(Options{})
	assert.Error(t, err)
}

func TestWriteAndScan(t *testing.T) {
	sink := newTestSink(t, t.TempDir())
	assert.Equal(t, uuid.Version(7), sink.Session().Version())

	rec := gourdianringlog.Record{
		Text:      "transfer timeout",
		Subsystem: gourdianringlog.SPI,
		Level:     gourdianringlog.ERROR,
		Timestamp: 1659757987,
		Stamped:   true,
		Persist:   true,
	}
	require.NoError(t, sink.WriteRecord(rec, "line one\r\n"))
	require.NoError(t, sink.WriteLine("\r"))

	entries := collect(t, sink)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{
		Session:    sink.Session().String(),
		Seq:        0,
		Timestamp:  1659757987,
		Stamped:    true,
		Level:      "ERROR",
		Subsystem:  "SPI",
		Text:       "transfer timeout",
		Line:       "line one\r\n",
		Structured: true,
	}, entries[0])
	assert.Equal(t, int(gourdianringlog.ERROR), entries[0].Severity())

	assert.Equal(t, uint64(1), entries[1].Seq)
	assert.Equal(t, "\r", entries[1].Line)
	assert.False(t, entries[1].Structured)
	assert.Equal(t, -1, entries[1].Severity())
}

func TestSessionsOrderedAndResumable(t *testing.T) {
	dir := t.TempDir()

	first, err := Open(Options{DataDir: dir, Fsync: FsyncModeAlways})
	require.NoError(t, err)
	require.NoError(t, first.WriteLine("boot 1 a"))
	require.NoError(t, first.WriteLine("boot 1 b"))
	firstSession := first.Session()
	require.NoError(t, first.Close())
	assert.ErrorIs(t, first.WriteLine("closed"), ErrClosed)

	// UUIDv7 sessions sort by creation time at millisecond resolution.
	time.Sleep(2 * time.Millisecond)

	second, err := Open(Options{DataDir: dir, Fsync: FsyncModeNever})
	require.NoError(t, err)
	require.NoError(t, second.WriteLine("boot 2 a"))
	secondSession := second.Session()
	require.NoError(t, second.Close())

	resumed, err := Open(Options{DataDir: dir, Session: firstSession})
	require.NoError(t, err)
	defer resumed.Close()
	require.NoError(t, resumed.WriteLine("boot 1 c"))

	sessions, err := resumed.Sessions()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{firstSession, secondSession}, sessions)

	var lines []string
	require.NoError(t, resumed.ScanSession(firstSession, func(e Entry) error {
		lines = append(lines, e.Line)
		return nil
	}))
	assert.Equal(t, []string{"boot 1 a", "boot 1 b", "boot 1 c"}, lines)

	all := collect(t, resumed)
	require.Len(t, all, 4)
	assert.Equal(t, "boot 2 a", all[3].Line)
	assert.Equal(t, uint64(2), all[2].Seq)
}

func TestScanStopsOnError(t *testing.T) {
	sink := newTestSink(t, t.TempDir())
	require.NoError(t, sink.WriteLine("a"))
	require.NoError(t, sink.WriteLine("b"))

	stop := errors.New("stop")
	seen := 0
	err := sink.Scan(func(Entry) error {
		seen++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, seen)
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		sink, err := Open(Options{DataDir: dir})
		require.NoError(t, err)
		require.NoError(t, sink.WriteLine("old boot"))
		require.NoError(t, sink.Close())
		time.Sleep(2 * time.Millisecond)
	}

	sink := newTestSink(t, dir)
	require.NoError(t, sink.WriteLine("current boot"))

	removed, err := sink.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	sessions, err := sink.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, sink.Session(), sessions[1])

	removed, err = sink.Prune(5)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPruneKeepsResumedSession(t *testing.T) {
	dir := t.TempDir()
	var boots []uuid.UUID
	for i := 0; i < 3; i++ {
		sink, err := Open(Options{DataDir: dir})
		require.NoError(t, err)
		require.NoError(t, sink.WriteLine("boot"))
		boots = append(boots, sink.Session())
		require.NoError(t, sink.Close())
		time.Sleep(2 * time.Millisecond)
	}

	resumed, err := Open(Options{DataDir: dir, Session: boots[0]})
	require.NoError(t, err)
	defer resumed.Close()

	removed, err := resumed.Prune(1)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	sessions, err := resumed.Sessions()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{boots[0]}, sessions)
}

func TestPruneZeroKeepsOwnSession(t *testing.T) {
	dir := t.TempDir()
	old, err := Open(Options{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, old.WriteLine("old boot"))
	require.NoError(t, old.Close())
	time.Sleep(2 * time.Millisecond)

	sink := newTestSink(t, dir)
	require.NoError(t, sink.WriteLine("current boot"))

	removed, err := sink.Prune(0)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	sessions, err := sink.Sessions()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{sink.Session()}, sessions)
}

func TestReadsAfterClose(t *testing.T) {
	sink, err := Open(Options{DataDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, sink.WriteLine("a"))
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())

	tests := []struct {
		name string
		call func() error
	}{
		{"Scan", func() error { return sink.Scan(func(Entry) error { return nil }) }},
		{"ScanSession", func() error {
			return sink.ScanSession(sink.Session(), func(Entry) error { return nil })
		}},
		{"Sessions", func() error {
			_, err := sink.Sessions()
			return err
		}},
		{"Prune", func() error {
			_, err := sink.Prune(0)
			return err
		}},
		{"WriteRecord", func() error {
			return sink.WriteRecord(gourdianringlog.Record{Level: gourdianringlog.INFO}, "line")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			assert.NotPanics(t, func() { err = tt.call() })
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestSinkAsLoggerPersistence(t *testing.T) {
	sink := newTestSink(t, t.TempDir())
	logger, err := gourdianringlog.New(gourdianringlog.DefaultConfig(),
		gourdianringlog.WithPersistence(sink),
		gourdianringlog.WithClock(gourdianringlog.ClockFunc(func() int64 { return 42 })),
	)
	require.NoError(t, err)

	logger.Record(gourdianringlog.UART, gourdianringlog.CRITICAL, "framing error", true)
	logger.Record(gourdianringlog.UART, gourdianringlog.INFO, "not persisted", false)
	assert.Equal(t, 2, logger.Flush())

	entries := collect(t, sink)
	require.Len(t, entries, 1)
	assert.Equal(t, "UART", entries[0].Subsystem)
	assert.Equal(t, "CRITICAL", entries[0].Level)
	assert.Equal(t, int64(42), entries[0].Timestamp)
	assert.Equal(t, "1970-01-01 00:00:42, [CRITICAL]\tUART:\tframing error\r\n", entries[0].Line)
}

func TestKeyRoundTrip(t *testing.T) {
	session := uuid.Must(uuid.NewV7())
	key := recordKey(session, 1<<40+3)

	gotSession, gotSeq, err := decodeRecordKey(key)
	require.NoError(t, err)
	assert.Equal(t, session, gotSession)
	assert.Equal(t, uint64(1<<40+3), gotSeq)

	_, _, err = decodeRecordKey([]byte("rec/short"))
	assert.ErrorIs(t, err, errBadKey)

	assert.Equal(t, []byte("rec0"), prefixUpperBound([]byte("rec/")))
	assert.Nil(t, prefixUpperBound([]byte{0xff, 0xff}))
}
