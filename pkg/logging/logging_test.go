package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tt.log")
	log, err := New("debug", path)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hello from the feed")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "hello from the feed") {
		t.Fatalf("expected log line in %s but got %q", path, string(b))
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty", filepath.Join(t.TempDir(), "tt.log")); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected a logger")
	}
}
