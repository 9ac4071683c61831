package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"system_model_importer/router"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog API and the ingestion trigger over HTTP",
		RunE:  runServe,
	}
	cmd.Flags().IntP("port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := startApp(ctx, cmd, nil)
	if err != nil {
		return err
	}
	defer a.close()

	// Release mode unless GIN_MODE says otherwise.
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	port := a.cfg.Server.Port
	if cmd.Flags().Changed("port") {
		if port, err = cmd.Flags().GetInt("port"); err != nil {
			return err
		}
	}
	if port == 0 {
		port = 8080
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router.SetupRouter(a.models, a.ingest, a.logger),
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server is running", "port", port)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("server is shutting down")
	return srv.Shutdown(shutdownCtx)
}
