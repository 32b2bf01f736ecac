package pebblesink

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"github.com/gourdian25/gourdianringlog"
)

// FsyncMode defines durability behavior for persisted records.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways syncs the WAL on every record.
	FsyncModeAlways
	// FsyncModeInterval lets Pebble coalesce WAL syncs within FsyncInterval.
	FsyncModeInterval
	// FsyncModeNever leaves syncing to Pebble.
	FsyncModeNever
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("pebblesink: closed")

// Options configures the Pebble sink.
type Options struct {
	// DataDir is the path to the Pebble database directory.
	DataDir string
	// Fsync determines when to sync the WAL.
	Fsync FsyncMode
	// FsyncInterval controls group-commit when Fsync=FsyncModeInterval.
	FsyncInterval time.Duration
	// Session continues an existing boot session instead of starting a new
	// one. Zero starts a fresh UUIDv7 session.
	Session uuid.UUID
	// PebbleOptions allows advanced tuning of Pebble. If nil, defaults are used.
	PebbleOptions *pebble.Options
}

// Sink stores persisted records in Pebble. It implements
// gourdianringlog.RecordSink and is safe for concurrent use.
type Sink struct {
	mu        sync.RWMutex
	db        *pebble.DB
	writeOpts *pebble.WriteOptions
	session   uuid.UUID
	seq       uint64
	closed    bool
}

var _ gourdianringlog.RecordSink = (*Sink)(nil)

// Open creates or opens the Pebble database in opts.DataDir.
func Open(opts Options) (*Sink, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebblesink: Options.DataDir is required")
	}

	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}

	writeOpts := pebble.NoSync
	switch opts.Fsync {
	case FsyncModeAlways:
		writeOpts = pebble.Sync
	case FsyncModeInterval:
		if opts.FsyncInterval <= 0 {
			opts.FsyncInterval = 5 * time.Millisecond
		}
		interval := opts.FsyncInterval
		po.WALMinSyncInterval = func() time.Duration { return interval }
		writeOpts = pebble.Sync
	case FsyncModeNever:
	default:
		po.WALMinSyncInterval = func() time.Duration { return 5 * time.Millisecond }
		writeOpts = pebble.Sync
	}

	db, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, fmt.Errorf("pebblesink: open %s: %w", opts.DataDir, err)
	}

	s := &Sink{db: db, writeOpts: writeOpts, session: opts.Session}
	if s.session == uuid.Nil {
		s.session, err = uuid.NewV7()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("pebblesink: new session: %w", err)
		}
		return s, nil
	}

	last, found, err := s.lastSeq(s.session)
	if err != nil {
		db.Close()
		return nil, err
	}
	if found {
		s.seq = last + 1
	}
	return s, nil
}

func (s *Sink) lastSeq(session uuid.UUID) (uint64, bool, error) {
	lower, upper := sessionBounds(session)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return 0, false, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, false, iter.Error()
	}
	_, seq, err := decodeRecordKey(iter.Key())
	if err != nil {
		return 0, false, err
	}
	return seq, true, nil
}

// Session returns the boot session records are written under.
func (s *Sink) Session() uuid.UUID {
	return s.session
}

// WriteLine stores a bare rendered line.
func (s *Sink) WriteLine(line string) error {
	return s.put(Entry{Line: line})
}

// WriteRecord stores rec together with its rendered line.
func (s *Sink) WriteRecord(rec gourdianringlog.Record, line string) error {
	return s.put(entryFromRecord(rec, line))
}

func (s *Sink) put(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	e.Session = s.session.String()
	e.Seq = s.seq
	value, err := encodeEntry(&e)
	if err != nil {
		return fmt.Errorf("pebblesink: encode: %w", err)
	}
	if err := s.db.Set(recordKey(s.session, s.seq), value, s.writeOpts); err != nil {
		return fmt.Errorf("pebblesink: set: %w", err)
	}
	s.seq++
	return nil
}

// Scan calls fn for every stored entry, sessions in start order and
// records in flush order. A non-nil error from fn stops the scan and is
// returned. fn must not write to the sink.
func (s *Sink) Scan(fn func(Entry) error) error {
	return s.scan(recordPrefix, prefixUpperBound(recordPrefix), fn)
}

// ScanSession is Scan restricted to one boot session.
func (s *Sink) ScanSession(session uuid.UUID, fn func(Entry) error) error {
	lower, upper := sessionBounds(session)
	return s.scan(lower, upper, fn)
}

func (s *Sink) scan(lower, upper []byte, fn func(Entry) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		e, err := decodeEntry(iter.Value())
		if err != nil {
			return fmt.Errorf("pebblesink: decode %x: %w", iter.Key(), err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Sessions lists the stored boot sessions, oldest first.
func (s *Sink) Sessions() ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.sessions()
}

// sessions walks one key per session. Caller must hold s.mu.
func (s *Sink) sessions() ([]uuid.UUID, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: recordPrefix,
		UpperBound: prefixUpperBound(recordPrefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var sessions []uuid.UUID
	for valid := iter.First(); valid; {
		session, _, err := decodeRecordKey(iter.Key())
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
		_, next := sessionBounds(session)
		valid = iter.SeekGE(next)
	}
	return sessions, iter.Error()
}

// Prune deletes stored sessions until at most keep remain and returns the
// number removed. The sink's own session is never deleted and counts as
// one of the kept sessions; the others are kept newest first.
func (s *Sink) Prune(keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	sessions, err := s.sessions()
	if err != nil {
		return 0, err
	}

	others := make([]uuid.UUID, 0, len(sessions))
	for _, session := range sessions {
		if session != s.session {
			others = append(others, session)
		}
	}
	if keep < 0 {
		keep = 0
	}
	if keep > 0 && len(others) < len(sessions) {
		keep--
	}
	if len(others) <= keep {
		return 0, nil
	}

	removed := 0
	for _, session := range others[:len(others)-keep] {
		lower, upper := sessionBounds(session)
		if err := s.db.DeleteRange(lower, upper, s.writeOpts); err != nil {
			return removed, fmt.Errorf("pebblesink: delete session %s: %w", session, err)
		}
		removed++
	}
	return removed, nil
}

// Close closes the database. Further writes fail with ErrClosed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
