package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const logFileName = "cyberdark.log"

// Rotator is an io.Writer that appends to a log file and rotates it by
// size, keeping a bounded set of timestamped backups. Warnings go to
// stderr directly; the rotator must never log through the global logger
// it backs.
type Rotator struct {
	mu   sync.Mutex
	dir  string
	file *os.File
	size int64

	maxSize    int64
	maxBackups int
	maxAge     time.Duration
	compress   bool
}

// NewRotator opens dir/cyberdark.log for appending. maxSizeMB bounds the
// active file, maxBackups and maxAgeDays bound the rotated ones.
func NewRotator(dir string, maxSizeMB, maxBackups, maxAgeDays int, compress bool) (*Rotator, error) {
	r := &Rotator{
		dir:        dir,
		maxSize:    int64(maxSizeMB) << 20,
		maxBackups: maxBackups,
		maxAge:     time.Duration(maxAgeDays) * 24 * time.Hour,
		compress:   compress,
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rotator) open() error {
	path := filepath.Join(r.dir, logFileName)

	r.size = 0
	if info, err := os.Stat(path); err == nil {
		r.size = info.Size()
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	r.file = file
	return nil
}

// Write implements io.Writer.
func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}

	if r.maxSize > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *Rotator) rotate() error {
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: close log file before rotate: %v\n", err)
		}
		r.file = nil
	}

	stamp := time.Now().Format("2006-01-02-15-04-05")
	current := filepath.Join(r.dir, logFileName)
	backup := filepath.Join(r.dir, logFileName+"."+stamp)
	if err := os.Rename(current, backup); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}

	if r.compress {
		if err := compressLog(backup); err != nil {
			fmt.Fprintf(os.Stderr, "warning: compress rotated log: %v\n", err)
		} else if err := os.Remove(backup); err != nil {
			fmt.Fprintf(os.Stderr, "warning: remove uncompressed log: %v\n", err)
		}
	}

	r.prune()
	return r.open()
}

func compressLog(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		_ = gz.Close()
		_ = out.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// prune removes backups past the age limit, then the oldest ones past the
// count limit.
func (r *Rotator) prune() {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return
	}

	now := time.Now()
	var backups []os.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), logFileName+".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if r.maxAge > 0 && now.Sub(info.ModTime()) > r.maxAge {
			if err := os.Remove(filepath.Join(r.dir, info.Name())); err != nil {
				fmt.Fprintf(os.Stderr, "warning: remove expired log backup: %v\n", err)
			}
			continue
		}
		backups = append(backups, info)
	}

	if r.maxBackups <= 0 || len(backups) <= r.maxBackups {
		return
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime().Before(backups[j].ModTime())
	})
	for _, info := range backups[:len(backups)-r.maxBackups] {
		if err := os.Remove(filepath.Join(r.dir, info.Name())); err != nil {
			fmt.Fprintf(os.Stderr, "warning: remove excess log backup: %v\n", err)
		}
	}
}

// Close closes the active log file.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
