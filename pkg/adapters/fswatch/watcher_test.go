package fswatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/blocksched/pkg/adapters/logger"
	"github.com/user/blocksched/pkg/adapters/osfilesystem"
)

func TestWatcher_Debounced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "festival.yaml")
	os.WriteFile(path, []byte("a"), 0644)

	changes := make(chan string, 10)
	w, err := New(func(p string) { changes <- p }, logger.NewNoop(), WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()
	if err := w.AddFile(path); err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		os.WriteFile(path, []byte{byte('b' + i)}, 0644)
	}

	select {
	case got := <-changes:
		want, _ := filepath.Abs(path)
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}

	select {
	case <-changes:
		t.Error("expected writes to be coalesced")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "festival.json")
	fs := osfilesystem.New()
	fs.WriteFile(path, []byte("{}"))

	changes := make(chan string, 10)
	w, err := New(func(p string) { changes <- p }, logger.NewNoop(), WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.AddFile(path); err != nil {
		t.Fatal(err)
	}

	fs.WriteFile(path, []byte(`{"schedule":[]}`))

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification after rename")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "festival.json")
	os.WriteFile(path, []byte("{}"), 0644)

	changes := make(chan string, 10)
	w, err := New(func(p string) { changes <- p }, logger.NewNoop(), WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	w.AddFile(path)

	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	select {
	case p := <-changes:
		t.Errorf("unexpected change for %s", p)
	case <-time.After(200 * time.Millisecond):
	}
}
