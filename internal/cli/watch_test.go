package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.json")
	writeFile(t, path, ordersRecord)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, log.NewWithOptions(io.Discard, log.Options{}), path, func() {
			changed <- struct{}{}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "unrelated.json"), "{}")
	for i := 0; i < 3; i++ {
		writeFile(t, path, ordersRecord)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}

	// The burst of writes is coalesced into one call.
	select {
	case <-changed:
		t.Error("burst of writes produced more than one call")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchFile() = %v, want nil on cancel", err)
		}
	case <-time.After(time.Second):
		t.Error("watchFile did not return after cancel")
	}
}

func TestWatchFileMissingDir(t *testing.T) {
	err := watchFile(context.Background(), log.Default(), filepath.Join(t.TempDir(), "missing", "x.json"), func() {})
	if err == nil {
		t.Error("expected error watching a missing directory")
	}
}
