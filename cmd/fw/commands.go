package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/framewiresh/framewire/internal/client"
	"github.com/framewiresh/framewire/internal/decoder"
	"github.com/framewiresh/framewire/internal/node"
	"github.com/framewiresh/framewire/internal/schema"
	"github.com/framewiresh/framewire/internal/store"
)

// target assembles the connection target from the persistent flags.
func target() (*client.Target, error) {
	t := &client.Target{
		Socket: socketFlag,
		Addr:   addrFlag,
		URL:    urlFlag,
		Token:  tokenFlag,
	}
	if t.Socket == "" && t.Addr == "" && t.URL == "" {
		return nil, fmt.Errorf("specify a target with --socket, --addr, or --url")
	}
	return t, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".framewire"
	}
	return filepath.Join(home, ".framewire")
}

// ---------------------------------------------------------------------------
// listen
// ---------------------------------------------------------------------------

func listenCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Run the daemon: accept streams and decode framed JSON messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return fmt.Errorf("creating data dir: %w", err)
			}
			n, err := node.NewNode(dataDir)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := n.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", defaultDataDir(), "Daemon state directory")
	return cmd
}

// ---------------------------------------------------------------------------
// send
// ---------------------------------------------------------------------------

func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [json]",
		Short: "Frame one JSON document and write it to the target",
		Long: `Frame one JSON document and write it to the target.
The document is taken from the argument, or from stdin when absent.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := target()
			if err != nil {
				return err
			}

			var raw []byte
			if len(args) == 1 {
				raw = []byte(args[0])
			} else {
				raw, err = io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
			}

			var msg any
			if err := json.Unmarshal(raw, &msg); err != nil {
				return fmt.Errorf("input is not valid JSON: %w", err)
			}

			return client.Send(cmd.Context(), t, msg)
		},
	}
	return cmd
}

// ---------------------------------------------------------------------------
// receive
// ---------------------------------------------------------------------------

func receiveCmd() *cobra.Command {
	var (
		timeout        time.Duration
		maxBufferSize  int
		destroyOnError bool
		schemaPath     string
	)

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Wait for the next valid message on the target and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := target()
			if err != nil {
				return err
			}

			opts := decoder.ReceiveOptions{
				Options: decoder.Options{
					MaxBufferSize:  maxBufferSize,
					DestroyOnError: destroyOnError,
				},
				Timeout: timeout,
			}
			if schemaPath != "" {
				validator, err := schema.CompileFile(schemaPath)
				if err != nil {
					return err
				}
				opts.Schema = validator
			}

			msg, err := client.ReceiveNext(cmd.Context(), t, opts)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(msg, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding message: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 = wait forever)")
	cmd.Flags().IntVar(&maxBufferSize, "max-buffer-size", 0, "Cap on buffered unparsed bytes (0 = unbounded)")
	cmd.Flags().BoolVar(&destroyOnError, "destroy-on-error", false, "Close the stream on the first decode error")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON Schema document (JSON or YAML) gating the message")
	return cmd
}

// ---------------------------------------------------------------------------
// journal
// ---------------------------------------------------------------------------

func journalCmd() *cobra.Command {
	var (
		dataDir string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List messages recorded by a local daemon's journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := store.NewSQLiteStore(dataDir)
			if err != nil {
				return err
			}
			defer journal.Close()

			msgs, err := journal.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Printf("%s  %s  %s\n", m.ReceivedAt.Format(time.RFC3339), m.ConnID, m.Payload)
			}

			total, err := journal.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%d of %d messages\n", len(msgs), total)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", defaultDataDir(), "Daemon state directory")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum messages to list")
	return cmd
}
