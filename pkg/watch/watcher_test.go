package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestWatch_EmitsOnlyPcapCreations(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, done, err := Watch(ctx, dir, zap.NewNop())
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Give the watcher time to register before writing, to avoid a race
	// against the fsnotify.Add call.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "capture.pcap"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case p := <-paths:
		if filepath.Ext(p) != ".pcap" {
			t.Errorf("received non-pcap path %q", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a .pcap event")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher goroutine did not exit after context cancellation")
	}
}
