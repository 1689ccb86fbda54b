package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriterRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")

	w, err := NewRotatingWriter(path, 64)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer w.Close()

	line := []byte(strings.Repeat("x", 39) + "\n")
	for i := 0; i < 3; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	backup, err := os.Stat(path + backupSuffix)
	if err != nil {
		t.Fatalf("expected a rotated backup: %v", err)
	}
	if backup.Size() == 0 {
		t.Fatal("backup is empty")
	}

	live, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat live file: %v", err)
	}
	if live.Size() > 64 {
		t.Fatalf("live file not reset after rotation: %d bytes", live.Size())
	}
}

func TestNewRotatingWriterArchivesOversizedLeftover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	if err := os.WriteFile(path, []byte(strings.Repeat("y", 200)), 0644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w, err := NewRotatingWriter(path, 64)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer w.Close()

	if _, err := os.Stat(path + backupSuffix); err != nil {
		t.Fatalf("oversized leftover should become the backup: %v", err)
	}
	live, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat live file: %v", err)
	}
	if live.Size() != 0 {
		t.Fatalf("live file should start fresh, has %d bytes", live.Size())
	}
}
