package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	socketFlag  string
	addrFlag    string
	urlFlag     string
	tokenFlag   string
	verboseFlag bool
)

func main() {
	// Optional .env next to the binary; real env always wins.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "fw",
		Short: "Length-prefixed JSON message framing over byte streams",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verboseFlag)
		},
	}
	rootCmd.PersistentFlags().StringVar(&socketFlag, "socket", "", "Unix socket path or data dir of a local daemon")
	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", "", "TCP address of a daemon (host:port)")
	rootCmd.PersistentFlags().StringVar(&urlFlag, "url", "", "WebSocket URL of a daemon (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Ingest token for WebSocket targets")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		listenCmd(),
		sendCmd(),
		receiveCmd(),
		journalCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging installs a text handler when stderr is a terminal and a JSON
// handler otherwise, so piped output stays machine-readable.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
