package node

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/framewiresh/framewire/internal/client"
	"github.com/framewiresh/framewire/internal/store"
)

// startNode runs a daemon against dataDir until the test ends.
func startNode(t *testing.T, dataDir string) *Node {
	t.Helper()

	n, err := NewNode(dataDir)
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = n.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("node did not shut down")
		}
	})

	// Wait for the socket to appear.
	sock := n.socketPath
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(sock); err == nil {
			return n
		}
		if time.Now().After(deadline) {
			t.Fatalf("socket %s never appeared", sock)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNodeJournalsReceivedMessages(t *testing.T) {
	dir := t.TempDir()
	cfg := "[journal]\nenabled = true\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	startNode(t, dir)

	ctx := context.Background()
	target := &client.Target{Socket: dir}
	if err := client.Send(ctx, target, map[string]any{"kind": "reading", "value": 21.5}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := client.Send(ctx, target, []any{1, 2, 3}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	// The journal is written asynchronously to the sends; poll it.
	journal, err := store.NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}
	defer journal.Close()

	deadline := time.Now().Add(5 * time.Second)
	for {
		n, err := journal.Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("journal has %d messages, want 2", n)
		}
		time.Sleep(20 * time.Millisecond)
	}

	msgs, err := journal.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("List returned %d messages, want 2", len(msgs))
	}
}

func TestNodeSurvivesMalformedFrames(t *testing.T) {
	dir := t.TempDir()
	startNode(t, dir)

	ctx := context.Background()
	target := &client.Target{Socket: dir}

	s, err := target.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Destroy()

	// A malformed payload followed by a valid one on the same stream: with
	// destroy_on_error unset the stream must remain usable.
	if _, err := s.Write([]byte{0, 0, 0, 1, '{'}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Write([]byte{0, 0, 0, 1, '7'}); err != nil {
		t.Fatalf("writing after malformed frame: %v", err)
	}
}

func TestNodeRejectsBadSchemaPath(t *testing.T) {
	dir := t.TempDir()
	cfg := "[decode]\nschema = \"does-not-exist.json\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := NewNode(dir); err == nil {
		t.Fatal("expected error for missing schema file, got nil")
	}
}
