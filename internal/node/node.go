// Package node implements the listener daemon: it accepts byte streams over
// Unix socket, TCP, and WebSocket, registers a frame decoder on each, and
// logs, counts, and journals every delivery outcome.
package node

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/framewiresh/framewire/internal/auth"
	"github.com/framewiresh/framewire/internal/config"
	"github.com/framewiresh/framewire/internal/decoder"
	"github.com/framewiresh/framewire/internal/schema"
	"github.com/framewiresh/framewire/internal/store"
)

// Node is the daemon. Each accepted connection is handled by exactly one
// goroutine owning that connection's decoder.
type Node struct {
	cfg     *config.Config
	opts    decoder.Options
	journal store.Store // nil when the journal is disabled

	dataDir    string
	socketPath string
	pidPath    string
}

// NewNode creates a Node rooted at dataDir. It loads the configuration,
// compiles the schema gate if one is configured, opens the journal, and
// ensures a WebSocket ingest token exists on disk.
func NewNode(dataDir string) (*Node, error) {
	cfg, err := config.LoadConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	opts := decoder.Options{
		MaxBufferSize:  cfg.Decode.MaxBufferSize,
		DestroyOnError: cfg.Decode.DestroyOnError,
	}
	if cfg.Decode.Schema != nil && *cfg.Decode.Schema != "" {
		validator, err := schema.CompileFile(*cfg.Decode.Schema)
		if err != nil {
			return nil, fmt.Errorf("loading schema: %w", err)
		}
		opts.Schema = validator
	}

	var journal store.Store
	if cfg.Journal.Enabled {
		journal, err = store.NewSQLiteStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening journal: %w", err)
		}
	}

	if cfg.Listen.HTTP != nil {
		token, err := auth.LoadOrGenerateToken(dataDir)
		if err != nil {
			return nil, fmt.Errorf("loading ingest token: %w", err)
		}
		slog.Info("ingest token ready", "token", token)
	}

	return &Node{
		cfg:        cfg,
		opts:       opts,
		journal:    journal,
		dataDir:    dataDir,
		socketPath: cfg.SocketPath(dataDir),
		pidPath:    dataDir + "/framewire.pid",
	}, nil
}

// Run starts the daemon. It writes a PID file, listens on the Unix socket,
// and starts the optional TCP and HTTP listeners. It blocks until ctx is
// cancelled.
func (n *Node) Run(ctx context.Context) error {
	pid := os.Getpid()
	if err := os.WriteFile(n.pidPath, []byte(fmt.Sprintf("%d", pid)), 0o644); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}

	// Remove a stale socket if one exists.
	_ = os.Remove(n.socketPath)

	ln, err := net.Listen("unix", n.socketPath)
	if err != nil {
		return fmt.Errorf("listening on unix socket: %w", err)
	}
	slog.Info("listening on unix socket", "path", n.socketPath)

	defer n.Cleanup()

	if n.cfg.Listen.TCP != nil {
		addr := *n.cfg.Listen.TCP
		tcpLn, tcpErr := net.Listen("tcp", addr)
		if tcpErr != nil {
			ln.Close()
			return fmt.Errorf("listening on tcp %s: %w", addr, tcpErr)
		}
		slog.Info("listening on tcp", "addr", addr)
		go func() {
			<-ctx.Done()
			tcpLn.Close()
		}()
		go n.acceptLoop(ctx, tcpLn)
	}

	if n.cfg.Listen.HTTP != nil {
		addr := *n.cfg.Listen.HTTP
		go func() {
			if httpErr := n.runHTTPServer(ctx, addr); httpErr != nil {
				slog.Error("http server error", "err", httpErr)
			}
		}()
	}

	// Close the listener when ctx is cancelled so Accept unblocks.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	n.acceptLoop(ctx, ln)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (n *Node) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Check if we were shut down.
			select {
			case <-ctx.Done():
				return
			default:
			}
			slog.Error("accept error", "err", err)
			continue
		}
		go n.handleConn(ctx, conn)
	}
}

// Cleanup removes the Unix socket and PID files and closes the journal.
func (n *Node) Cleanup() {
	_ = os.Remove(n.socketPath)
	_ = os.Remove(n.pidPath)
	if n.journal != nil {
		_ = n.journal.Close()
	}
}
