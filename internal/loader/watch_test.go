package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitEvent(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Events:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload signal within timeout")
	}
}

func TestWatchSignalsOnOwnedFileChange(t *testing.T) {
	dir := t.TempDir()
	pr := filepath.Join(dir, "presentation.pr")
	if err := os.WriteFile(pr, []byte("view[name=home]:\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(dir)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(pr, []byte("view[name=home]:\ntext[name=t1]: hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, w)
}

func TestWatchIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := Watch(dir)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Events:
		t.Fatal("unrelated file should not signal a reload")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestOwnedFile(t *testing.T) {
	owned := []string{
		"/p/presentation.pr", "/p/presentation.txt", "/p/geometries.csv",
		"/p/animations.csv", "/p/defaults.json",
		"/p/groups/t1/elements.txt", "/p/groups/t1/geometries.csv",
	}
	for _, path := range owned {
		if !ownedFile(path) {
			t.Errorf("ownedFile(%q) = false", path)
		}
	}
	for _, path := range []string{"/p/notes.md", "/p/media/logo.png"} {
		if ownedFile(path) {
			t.Errorf("ownedFile(%q) = true", path)
		}
	}
}
