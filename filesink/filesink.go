// Package filesink provides a size-rotated file persistence sink for a
// gourdianringlog Logger. It plays the role of the flash log on a target
// with a filesystem: every persisted line is appended to <Dir>/<Name>.log,
// which rotates into timestamped backups once it reaches MaxBytes.
package filesink

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	defaultName        = "ringlog"
	defaultMaxBytes    int64 = 1024 * 1024
	defaultBackupCount       = 3
)

// ErrClosed is returned by WriteLine after Close.
var ErrClosed = errors.New("filesink: closed")

// Config defines where and how persisted lines are stored.
//
// Fields:
//   - Dir: Directory holding the log file and its backups (required)
//   - Name: Base file name without extension (default "ringlog")
//   - MaxBytes: Size at which the file is rotated (default 1MB)
//   - BackupCount: Number of rotated backups to keep (default 3)
//   - Compress: Store rotated backups zstd-compressed as .log.zst
//   - Sync: fsync after every line
type Config struct {
	Dir         string `json:"dir" yaml:"dir"`
	Name        string `json:"name" yaml:"name"`
	MaxBytes    int64  `json:"max_bytes" yaml:"max_bytes"`
	BackupCount int    `json:"backup_count" yaml:"backup_count"`
	Compress    bool   `json:"compress" yaml:"compress"`
	Sync        bool   `json:"sync" yaml:"sync"`
}

// Validate checks the configuration for values Open cannot work with.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("filesink: Dir is required")
	}
	if c.MaxBytes < 0 {
		return fmt.Errorf("filesink: MaxBytes cannot be negative")
	}
	if c.BackupCount < 0 {
		return fmt.Errorf("filesink: BackupCount cannot be negative")
	}
	return nil
}

// Sink appends lines to a rotating log file. It implements
// gourdianringlog.Sink and is safe for concurrent use.
type Sink struct {
	mu          sync.Mutex
	path        string
	maxBytes    int64
	backupCount int
	sync        bool
	file        *os.File
	size        int64
	rotations   int
	encoder     *zstd.Encoder
	compress    func(path string) error
	closed      bool
}

// Open creates the directory if needed and opens the log file for appending.
func Open(config Config) (*Sink, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Name == "" {
		config.Name = defaultName
	}
	config.Name = strings.TrimSpace(strings.TrimSuffix(config.Name, ".log"))
	if config.MaxBytes == 0 {
		config.MaxBytes = defaultMaxBytes
	}
	if config.BackupCount == 0 {
		config.BackupCount = defaultBackupCount
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	s := &Sink{
		path:        filepath.Join(config.Dir, config.Name+".log"),
		maxBytes:    config.MaxBytes,
		backupCount: config.BackupCount,
		sync:        config.Sync,
	}

	if config.Compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		s.encoder = enc
		s.compress = s.compressBackup
	}

	if err := s.openFile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sink) openFile() error {
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to get file info: %w", err)
	}
	s.file = file
	s.size = info.Size()
	return nil
}

// Path returns the path of the active log file.
func (s *Sink) Path() string {
	return s.path
}

// WriteLine appends line to the active file, rotating first when the file
// has reached MaxBytes.
func (s *Sink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if s.file == nil {
		if err := s.openFile(); err != nil {
			return err
		}
	}

	// A failed rotation that left a file open is reported after the line
	// has been written.
	var rotateErr error
	if s.size >= s.maxBytes {
		if err := s.rotate(); err != nil {
			if s.file == nil {
				return fmt.Errorf("log rotation failed: %w", err)
			}
			rotateErr = fmt.Errorf("log rotation failed: %w", err)
		}
	}

	n, err := io.WriteString(s.file, line)
	s.size += int64(n)
	if err != nil {
		return fmt.Errorf("log write error: %w", err)
	}
	if s.sync {
		if err := s.file.Sync(); err != nil {
			return err
		}
	}
	return rotateErr
}

// Close closes the active file. Further writes fail with ErrClosed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.encoder != nil {
		s.encoder.Close()
	}
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// ReadAll returns the contents of a log file or backup, decompressing
// .zst backups.
func ReadAll(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return data, nil
	}

	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	return io.ReadAll(dec)
}
