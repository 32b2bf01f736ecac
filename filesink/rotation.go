package filesink

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// backupSuffix matches what rotate appends to the base name, so the active
// files of sibling sinks named <name>_<x> are never taken for backups.
var backupSuffix = regexp.MustCompile(`^_\d{8}_\d{6}_\d{4,}\.log(\.zst)?$`)

// rotate moves the active file aside as a backup, optionally compresses
// it, opens a fresh file and prunes old backups. A compression failure is
// returned after the fresh file is open, leaving the sink writable.
//
// Caller must hold s.mu.
func (s *Sink) rotate() error {
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	s.rotations++
	base := strings.TrimSuffix(s.path, ".log")
	timestamp := time.Now().Format("20060102_150405")
	backupPath := fmt.Sprintf("%s_%s_%04d.log", base, timestamp, s.rotations)

	if err := os.Rename(s.path, backupPath); err != nil {
		if openErr := s.openFile(); openErr != nil {
			return fmt.Errorf("failed to rename log file (%v) and couldn't reopen original (%v)", err, openErr)
		}
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	if err := s.openFile(); err != nil {
		return err
	}

	var compressErr error
	if s.compress != nil {
		compressErr = s.compress(backupPath)
	}

	s.cleanupOldBackups()
	return compressErr
}

// compressBackup replaces path with a zstd-compressed path.zst.
func (s *Sink) compressBackup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	compressed := s.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	if err := os.WriteFile(path+".zst", compressed, 0644); err != nil {
		return fmt.Errorf("failed to write compressed backup: %w", err)
	}
	return os.Remove(path)
}

// Backups lists the rotated backups of the sink, oldest first.
func (s *Sink) Backups() ([]string, error) {
	dir, base := filepath.Split(strings.TrimSuffix(s.path, ".log"))
	entries, err := os.ReadDir(filepath.Clean(dir))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, base) || !backupSuffix.MatchString(name[len(base):]) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	// Names embed the rotation time and counter, so lexical order is age order.
	sort.Strings(files)
	return files, nil
}

func (s *Sink) cleanupOldBackups() {
	files, err := s.Backups()
	if err != nil || len(files) <= s.backupCount {
		return
	}
	for _, f := range files[:len(files)-s.backupCount] {
		_ = os.Remove(f)
	}
}
