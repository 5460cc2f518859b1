// =============================================================================
// TaxEase Analyzer - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which starts the upload server.
//
// COMMAND USAGE:
//   taxease serve [--addr :8080]
//
// The server stops gracefully on SIGINT or SIGTERM. Logs are always JSON.
//
// =============================================================================

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/taxease/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload server",
	Long: `The serve command starts an HTTP server with an upload form at / and a
JSON API under /api. Uploaded files are analyzed in memory and never stored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr from config)")
}

func runServe(cmd *cobra.Command) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	serverCfg := a.cfg.Server
	if serveAddr != "" {
		serverCfg.Addr = serveAddr
	}
	gin.SetMode(serverCfg.Mode)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.analyzer(), serverCfg, a.ingestOptions(), a.logger)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	a.logger.Info("server exiting", zap.String("addr", serverCfg.Addr))
	return nil
}
