package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/pnc/internal/server"
)

var (
	serveHost     string
	servePort     int
	serveGRPCPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the evaluation server",
	Long: `Start the HTTP/WebSocket evaluation server.

Routes:
  /ws            WebSocket, {"type":"eval","payload":{"input":"+ 1 2"}}
  /api/v1/eval   POST {"input":"+ 1 2"}
  /healthz       health report

gRPC (on the separate grpc_port):
  grpc.health.v1.Health   standard health service
  pnc.v1.Evaluator        Evaluate, JSON codec ("application/grpc+json")

The addresses default to [server] host/port/grpc_port in the configuration;
a negative grpc_port disables gRPC.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides [server] host)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides [server] port)")
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC port, negative disables (overrides [server] grpc_port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := server.ConfigFrom(appConfig.Server)
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveGRPCPort != 0 {
		cfg.GRPCPort = serveGRPCPort
	}

	store := openHistory()
	defer closeHistory(store)

	srv := server.New(cfg, server.Options{
		Engine: newEngine(),
		Store:  store,
		Logger: logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "pnc listening on http://%s\n", srv.Address())
	if cfg.GRPCPort > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "gRPC listening on %s\n", srv.GRPCAddress())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}
