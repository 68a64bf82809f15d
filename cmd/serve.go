package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jjaoguedes/facegate/internal/access"
	"github.com/jjaoguedes/facegate/internal/actuator"
	"github.com/jjaoguedes/facegate/internal/config"
	"github.com/jjaoguedes/facegate/internal/extractor"
	"github.com/jjaoguedes/facegate/internal/report"
	"github.com/jjaoguedes/facegate/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the access controller server",
	Long: `Start the Facegate HTTP server.
The server accepts probe images on POST /face, drives the entry/exit
session state machine and serves attendance report exports.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// newSignaler picks the actuator implementation based on configuration.
func newSignaler(cfg *config.Config) actuator.Signaler {
	if cfg.Actuator.URL == "" {
		fmt.Println("No actuator configured, entry/exit signaling disabled")
		return actuator.Noop{}
	}
	fmt.Printf("Actuator signaling enabled (%s)\n", cfg.Actuator.URL)
	return actuator.NewClient(cfg.Actuator.URL, cfg.Actuator.Timeout)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ext := extractor.NewClient(cfg.Extractor.URL, cfg.Extractor.Timeout)
	service := access.NewService(store, ext, newSignaler(cfg), cfg)

	count, err := service.ReloadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("loading identity snapshot: %w", err)
	}
	fmt.Printf("Loaded %d enrolled identities\n", count)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(port, host, service, report.NewAggregator(store.Sessions()), store)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Facegate on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
