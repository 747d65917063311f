package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/easy-install/ei/internal/buildinfo"
	"github.com/easy-install/ei/internal/config"
	"github.com/easy-install/ei/internal/log"
)

var (
	dirFlag         string
	aliasFlag       string
	namesFlag       string
	targetFlag      string
	retryFlag       uint64
	proxyFlag       string
	timeoutFlag     uint64
	stripFlag       bool
	upxFlag         bool
	installOnlyFlag bool
	quietFlag       bool
)

var globalCtx context.Context
var globalCancel context.CancelFunc

var rootCmd = &cobra.Command{
	Use:   "ei <url>",
	Short: "Install a tool's released executable onto PATH",
	Long: `ei resolves a reference — a GitHub repo, a direct release asset URL, a
distribution-manifest URL, a nightly.link build, or a local archive — into
extracted, installed executables on the host's PATH.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInstall,
}

func init() {
	rootCmd.Flags().StringVar(&dirFlag, "dir", "", "install directory (default $HOME/.ei)")
	rootCmd.Flags().StringVar(&aliasFlag, "alias", "", "rename the installed executable")
	rootCmd.Flags().StringVar(&namesFlag, "name", "", "comma-separated whitelist of logical names to install")
	rootCmd.Flags().StringVar(&targetFlag, "target", "", "force a target triple instead of auto-detecting the host")
	rootCmd.Flags().Uint64Var(&retryFlag, "retry", config.DefaultRetry, "number of retry attempts for network requests")
	rootCmd.Flags().StringVar(&proxyFlag, "proxy", "github", "download proxy selector (github, gh-proxy, hk)")
	rootCmd.Flags().Uint64Var(&timeoutFlag, "timeout", uint64(config.DefaultTimeout/time.Second), "per-request timeout in seconds")
	rootCmd.Flags().BoolVar(&stripFlag, "strip", false, "strip debug symbols from installed executables")
	rootCmd.Flags().BoolVar(&upxFlag, "upx", false, "compress installed executables with upx")
	rootCmd.Flags().BoolVar(&installOnlyFlag, "install-only", false, "install without registering PATH")
	rootCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress progress output")

	rootCmd.PersistentPreRun = initLogger
	rootCmd.Version = buildinfo.Version()
}

func main() {
	globalCtx, globalCancel = context.WithCancel(context.Background())
	defer globalCancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nreceived %s, canceling...\n", sig)
		globalCancel()

		<-sigChan
		fmt.Fprintln(os.Stderr, "forced exit")
		os.Exit(ExitGeneral)
	}()

	if err := rootCmd.ExecuteContext(globalCtx); err != nil {
		if globalCtx.Err() == context.Canceled {
			os.Exit(ExitGeneral)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(ExitGeneral)
	}
}

// initLogger sets up the global logger. Priority: --quiet, then
// LOG_LEVEL, then the default WARN level.
func initLogger(cmd *cobra.Command, args []string) {
	level := slog.LevelWarn
	if quietFlag {
		level = slog.LevelError
	} else if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(raw)); err == nil {
			level = parsed
		}
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	log.SetDefault(log.New(handler))
}
