package client

import (
	"context"
	"testing"
)

func TestNormalizeWSURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ws://host:9100/ws", "ws://host:9100/ws"},
		{"ws://host:9100", "ws://host:9100/ws"},
		{"wss://relay.example.com/ws", "wss://relay.example.com/ws"},
		{"https://relay.example.com", "wss://relay.example.com/ws"},
		{"http://localhost:9100", "ws://localhost:9100/ws"},
		{"http://localhost:9100/", "ws://localhost:9100/ws"},
	}
	for _, tc := range cases {
		if got := normalizeWSURL(tc.in); got != tc.want {
			t.Errorf("normalizeWSURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestConnectWithoutTarget(t *testing.T) {
	var target Target
	if _, err := target.Connect(context.Background()); err == nil {
		t.Fatal("expected error for empty target, got nil")
	}
}
