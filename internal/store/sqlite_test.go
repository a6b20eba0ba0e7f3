package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	payloads := []string{`{"seq":1}`, `{"seq":2}`, `{"seq":3}`}
	for i, p := range payloads {
		err := s.Append(ctx, Message{
			ID:         uuid.NewString(),
			ConnID:     "conn-a",
			ReceivedAt: base.Add(time.Duration(i) * time.Second),
			Payload:    p,
		})
		if err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}

	msgs, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("List returned %d messages, want 3", len(msgs))
	}
	// Newest first.
	if msgs[0].Payload != `{"seq":3}` {
		t.Errorf("first payload = %q, want seq 3", msgs[0].Payload)
	}
	if msgs[2].Payload != `{"seq":1}` {
		t.Errorf("last payload = %q, want seq 1", msgs[2].Payload)
	}
}

func TestListRespectsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := s.Append(ctx, Message{
			ID:         uuid.NewString(),
			ConnID:     "conn-b",
			ReceivedAt: time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
			Payload:    `1`,
		})
		if err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}

	msgs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 2 {
		t.Errorf("List returned %d messages, want 2", len(msgs))
	}
}

func TestCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d on empty journal, want 0", n)
	}

	err = s.Append(ctx, Message{
		ID:         uuid.NewString(),
		ConnID:     "conn-c",
		ReceivedAt: time.Now().UTC(),
		Payload:    `true`,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	n, err = s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestReopenKeepsMessages(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	err = s.Append(ctx, Message{
		ID:         uuid.NewString(),
		ConnID:     "conn-d",
		ReceivedAt: time.Now().UTC(),
		Payload:    `"persisted"`,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	s.Close()

	s, err = NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count after reopen = %d, want 1", n)
	}
}
