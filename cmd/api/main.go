// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"savora/internal/adapters/in/http/middleware"
	appcfg "savora/internal/infra/config"
	"savora/internal/infra/logging"
	"savora/internal/platform/di"
)

// atomicHandler allows swapping the underlying handler at runtime safely.
type atomicHandler struct {
	v atomic.Value // stores http.Handler
}

func newAtomicHandler(initial http.Handler) *atomicHandler {
	ah := &atomicHandler{}
	if initial == nil {
		initial = http.NotFoundHandler()
	}
	ah.v.Store(initial)
	return ah
}

func (h *atomicHandler) Store(next http.Handler) {
	if next == nil {
		return
	}
	h.v.Store(next)
}

func (h *atomicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cur := h.v.Load()
	if cur == nil {
		http.NotFound(w, r)
		return
	}
	cur.(http.Handler).ServeHTTP(w, r)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func main() {
	ctx := context.Background()

	logger, err := logging.New(os.Getenv("DEBUG") != "")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	cors := middleware.CORS(cfg.AllowedOrigin)
	recov := middleware.Recover(logger)

	// Start listening ASAP with a lightweight mux (healthz only); the full
	// router is swapped in once DI finishes.
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", healthz)

	switcher := newAtomicHandler(cors(healthMux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      switcher,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var containerHolder atomic.Value // stores *di.Container (or nil)
	containerHolder.Store((*di.Container)(nil))

	shuttingDown := make(chan struct{})

	// Graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c

		close(shuttingDown)
		logger.Info("shutting down", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown error", zap.Error(err))
		}

		// Flush pending cart snapshots and close clients.
		if v := containerHolder.Load(); v != nil {
			if cont, ok := v.(*di.Container); ok && cont != nil {
				cont.Shutdown(shutdownCtx)
				containerHolder.Store((*di.Container)(nil))
			}
		}

		close(idleConnsClosed)
	}()

	// Start server now (Cloud Run startup requirement)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Heavy DI init in background; then swap handler to the full mux.
	go func() {
		initCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		cont, err := di.New(initCtx, cfg, logger)
		if err != nil {
			logger.Warn("di init failed, serving /healthz only", zap.Error(err))
			return
		}
		containerHolder.Store(cont)

		select {
		case <-shuttingDown:
			cont.Shutdown(context.Background())
			return
		default:
		}

		fullMux := http.NewServeMux()
		fullMux.HandleFunc("/healthz", healthz)
		cont.Register(fullMux)

		switcher.Store(cors(recov(fullMux)))
		logger.Info("handler switched to full router")
	}()

	<-idleConnsClosed
	logger.Info("server stopped")
}
