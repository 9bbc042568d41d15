package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeInput(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "baskets.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestNew_Validation(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "a\n")
	noop := func(context.Context) error { return nil }

	if _, err := New(path, nil); err == nil {
		t.Error("New() with nil handler should fail")
	}
	if _, err := New(filepath.Join(dir, "missing.csv"), noop); err == nil {
		t.Error("New() with missing file should fail")
	}
	if _, err := New(dir, noop); err == nil {
		t.Error("New() with a directory should fail")
	}

	w, err := New(path, noop)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("Path() = %q, want absolute", w.Path())
	}
}

func TestWatcher_RunsOnStartAndOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "a,b\n")

	var runs atomic.Int32
	w, err := New(path, func(context.Context) error {
		runs.Add(1)
		return nil
	}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if got := runs.Load(); got != 1 {
		t.Fatalf("runs after Start() = %d, want 1", got)
	}

	if err := os.WriteFile(path, []byte("a,b\nb,c\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite input: %v", err)
	}
	if !waitFor(t, 2*time.Second, func() bool { return runs.Load() >= 2 }) {
		t.Fatalf("handler not re-run after write; runs = %d", runs.Load())
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "a\n")

	var runs atomic.Int32
	w, err := New(path, func(context.Context) error {
		runs.Add(1)
		return nil
	}, WithDebounce(200*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("a,b\n"), 0644); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !waitFor(t, 2*time.Second, func() bool { return runs.Load() >= 2 }) {
		t.Fatalf("handler not re-run; runs = %d", runs.Load())
	}
	time.Sleep(400 * time.Millisecond)
	if got := runs.Load(); got != 2 {
		t.Errorf("runs = %d, want 2 (start plus one coalesced change)", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "a\n")

	var runs atomic.Int32
	w, err := New(path, func(context.Context) error {
		runs.Add(1)
		return nil
	}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x\n"), 0644); err != nil {
		t.Fatalf("write other: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}

func TestWatcher_FirstRunErrorIsReturned(t *testing.T) {
	path := writeInput(t, t.TempDir(), "a\n")
	boom := errors.New("boom")

	w, err := New(path, func(context.Context) error { return boom })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := w.Start(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Start() error = %v, want %v", err, boom)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() after failed Start() error = %v", err)
	}
}

func TestWatcher_StartTwice(t *testing.T) {
	path := writeInput(t, t.TempDir(), "a\n")

	w, err := New(path, func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := w.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	path := writeInput(t, t.TempDir(), "a\n")

	w, err := New(path, func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() before Start() error = %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
