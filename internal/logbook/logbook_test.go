package logbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesOldestFirst(t *testing.T) {
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "session.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	defer book.Close()
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines := book.Tail(3)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestEntriesReachTheFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Warn("disk almost full: %d%%", 93)
	book.Error("upload failed: %s", "timeout")
	if err := book.Close(); err != nil {
		// Sync on regular files can fail on some platforms; the write
		// assertions below still hold.
		t.Logf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "disk almost full: 93%") {
		t.Fatalf("warn entry missing from file:\n%s", content)
	}
	if !strings.Contains(content, "upload failed: timeout") {
		t.Fatalf("error entry missing from file:\n%s", content)
	}
	if !strings.Contains(content, "WARN") || !strings.Contains(content, "ERROR") {
		t.Fatalf("levels missing from file:\n%s", content)
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.Printf("ignored")
	if lines := book.Tail(10); lines != nil {
		t.Fatalf("nil logbook returned lines: %v", lines)
	}
	if err := book.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
