package logging

import (
	"io"
	"log"
	"os"
	"sync"
)

// Default cap on the daemon log. One live file plus one rotated backup, so
// the TUI's tail view never chews through gigabytes.
const defaultMaxSize = 5 * 1024 * 1024

const backupSuffix = ".old"

// RotatingWriter is a size-capped append writer. When the live file passes
// maxSize it is renamed to <path>.old, replacing any previous backup, and a
// fresh file is started.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
}

// Setup routes the standard logger to both stdout and the daemon log file.
func Setup(logPath string) (*RotatingWriter, error) {
	rw, err := NewRotatingWriter(logPath, defaultMaxSize)
	if err != nil {
		return nil, err
	}

	log.SetOutput(io.MultiWriter(os.Stdout, rw))
	return rw, nil
}

func NewRotatingWriter(path string, maxSize int64) (*RotatingWriter, error) {
	// An oversized leftover from a previous run starts fresh.
	if info, err := os.Stat(path); err == nil && info.Size() > maxSize {
		os.Rename(path, path+backupSuffix)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	size := int64(0)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	return &RotatingWriter{
		file:    f,
		path:    path,
		size:    size,
		maxSize: maxSize,
	}, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.maxSize {
		w.rotate()
	}

	return n, err
}

func (w *RotatingWriter) rotate() {
	w.file.Close()

	os.Rename(w.path, w.path+backupSuffix)

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}

	w.file = f
	w.size = 0
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
