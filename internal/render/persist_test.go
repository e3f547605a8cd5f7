package render

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilePersister_WritesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "chart.png")
	p := NewFilePersister()

	if err := p.Persist([]byte("first"), path); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := p.Persist([]byte("second"), path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected replaced content, got %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestFilePersister_FailureLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	// The target is an existing directory, so the final rename fails.
	target := filepath.Join(dir, "chart.png")
	if err := os.MkdirAll(filepath.Join(target, "child"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := NewFilePersister().Persist([]byte("data"), target); err == nil {
		t.Fatalf("expected error when target is a non-empty directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the blocking directory, got %d entries", len(entries))
	}
}

func TestFilePersister_EmptyPath(t *testing.T) {
	if err := NewFilePersister().Persist([]byte("x"), ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPNG, "PNG": FormatPNG, " tikz ": FormatTikZ} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("svg"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
