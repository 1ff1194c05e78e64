package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"topodiagram/internal/codec"
	"topodiagram/internal/handler"
	"topodiagram/internal/hub"
	"topodiagram/internal/logging"
	"topodiagram/internal/service"
	"topodiagram/internal/watcher"
)

//go:embed web
var webFS embed.FS

func newServeCmd() *cobra.Command {
	var (
		addr     string
		watch    string
		dbPath   string
		noStore  bool
		readOnly bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and browser viewer",
		Long: `Serve the diagram API, the SSE event stream and a minimal browser viewer.

With --watch, the survey file is loaded at startup and reloaded whenever
it changes; every reload re-instantiates the template and resets the view.

  topodiagram serve --addr :8080 --watch survey.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			if noStore {
				cfg.Database.Path = ""
			}
			if readOnly {
				cfg.Viewer.Editable = false
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, watch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVarP(&watch, "watch", "w", "", "survey file to load and reload on change")
	cmd.Flags().StringVar(&dbPath, "db", "", "session database path")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable saved sessions")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "hide the edit and delete affordances")
	return cmd
}

func serve(ctx context.Context, watchPath string) error {
	log := logging.WithComponent("serve")
	if cfgSource != "" {
		log.WithField("path", cfgSource).Info("Loaded config")
	}
	log.Debug(cfg.Summary())

	bus := service.NewEventBus()
	svc, closeStore, err := newService(cfg, bus, true)
	if err != nil {
		return err
	}
	defer closeStore()

	sseHub := hub.New()
	go sseHub.Run(ctx)
	go sseHub.Forward(ctx, bus)

	if watchPath != "" {
		reload := func() {
			survey, err := codec.ReadConfigFile(watchPath)
			if err != nil {
				log.WithError(err).Warn("Failed to read survey")
				return
			}
			if _, err := svc.LoadConfig(*survey); err != nil {
				log.WithError(err).Warn("Failed to load survey")
			}
		}
		reload()

		w := watcher.New(watchPath, reload).WithDebounce(cfg.Watch.Debounce.Duration())
		go func() {
			if err := w.Watch(ctx); err != nil {
				log.WithError(err).Error("Survey watcher stopped")
			}
		}()
	}

	mux := http.NewServeMux()
	handler.NewDiagramHandler(svc).Routes(mux, sseHub)

	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return fmt.Errorf("failed to get embedded web content: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(webContent)))

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: handler.Chain(mux,
			handler.Recover,
			handler.CORS,
			handler.Logger,
		),
		ReadTimeout: 10 * time.Second,
		// exports and SSE streams can outlive a short write timeout
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("Server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Server shutdown error")
	}
	log.Info("Server stopped")
	return nil
}
