package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "survey.yaml")
	if err := os.WriteFile(path, []byte("kind: fiber\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	var calls atomic.Int32
	changed := make(chan struct{}, 8)
	w := New(path, func() {
		calls.Add(1)
		changed <- struct{}{}
	}).WithDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)

	t.Run("a burst of writes triggers one reload", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			if err := os.WriteFile(path, []byte("kind: radio\n"), 0644); err != nil {
				t.Fatalf("failed to write file: %v", err)
			}
			time.Sleep(5 * time.Millisecond)
		}

		select {
		case <-changed:
		case <-time.After(3 * time.Second):
			t.Fatal("expected a change notification")
		}
		time.Sleep(200 * time.Millisecond)
		if n := calls.Load(); n != 1 {
			t.Errorf("expected 1 reload, got %d", n)
		}
	})

	t.Run("other files are ignored", func(t *testing.T) {
		before := calls.Load()
		os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
		time.Sleep(200 * time.Millisecond)
		if calls.Load() != before {
			t.Error("expected no reload for unrelated file")
		}
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing", "survey.yaml"), func() {})
	if err := w.Watch(context.Background()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
