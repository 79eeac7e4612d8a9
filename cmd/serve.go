package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"smartbudget/config"
	"smartbudget/database"
	"smartbudget/logging"
	"smartbudget/middleware"
	"smartbudget/router"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var flagPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&flagPort, "port", "p", "", "listen port, e.g. 8080 or :8080")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagPort != "" {
		cfg.Server.Port = normalizePort(flagPort)
		logging.Logger.WithField("port", cfg.Server.Port).Info("listen port overridden by flag")
	}
	config.PrintConfig()

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	middleware.InitJWT(cfg)
	r := router.SetupRouter(cfg, db, router.NewServices(cfg, db))

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.WithFields(logrus.Fields{
			"addr":    cfg.Server.Port,
			"swagger": "http://localhost" + cfg.Server.Port + "/swagger/index.html",
		}).Info("smartbudget started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// normalizePort 自动补齐冒号前缀
func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}
