package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"

	"admatch/internal/apihandlers"
	"admatch/internal/app"
	"admatch/internal/taxonomy"
)

const shutdownTimeout = 15 * time.Second

var (
	serveAddr  string // Listen address
	servePort  int    // Listen port
	serveWatch bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run admatch as an HTTP API server",
	Long: `Starts an HTTP server exposing scoring, ranking and coverage validation
as a JSON API. SIGHUP reloads the taxonomy artifact without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cfg := appInstance.Config
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if cmd.Flags().Changed("watch") {
			cfg.Taxonomy.Watch = serveWatch
		}
		return runServer(cmd.Context(), appInstance)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the taxonomy when its file changes (overrides taxonomy.watch)")
}

func runServer(parent context.Context, appInstance *app.App) error {
	cfg := appInstance.Config
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default() // Includes logger and recovery middleware
	apihandlers.RegisterRoutes(router, apihandlers.NewAPIHandler(appInstance))

	listenAddr := net.JoinHostPort(cfg.Server.Addr, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	reload := func(ctx context.Context) error {
		_, err := appInstance.ReloadService.Reload(ctx)
		return err
	}

	if cfg.Taxonomy.Watch {
		w := &taxonomy.Watcher{
			Path:     appInstance.TaxonomyPath,
			Debounce: cfg.Taxonomy.WatchDebounce,
			Reload:   reload,
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				log.WithError(err).Error("taxonomy watcher stopped")
			}
		}()
	}

	if appInstance.ReloadBus != nil {
		go func() {
			if err := appInstance.ReloadService.Listen(ctx); err != nil {
				log.WithError(err).Error("reload listener stopped")
			}
		}()
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listenAddr, err)
	}
	if cfg.Server.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.Server.MaxConnections)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":            listenAddr,
			"taxonomy":        appInstance.Taxonomy.Current().Version(),
			"max_connections": cfg.Server.MaxConnections,
		}).Info("starting admatch API server")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	for {
		select {
		case err, ok := <-serveErr:
			if ok && err != nil {
				return fmt.Errorf("failed to run API server: %w", err)
			}
			return nil
		case <-ctx.Done():
			return shutdown(srv)
		case sig := <-signals:
			if sig == syscall.SIGHUP {
				log.Info("SIGHUP received, reloading taxonomy")
				if err := reload(ctx); err != nil {
					log.WithError(err).Error("taxonomy reload failed; keeping current graph")
				}
				continue
			}
			log.WithField("signal", sig.String()).Info("shutdown signal received")
			return shutdown(srv)
		}
	}
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("admatch API server stopped")
	return nil
}
