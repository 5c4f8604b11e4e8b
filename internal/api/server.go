package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatchq/internal/config"
	"dispatchq/internal/domain"
	"dispatchq/internal/infra/redisstate"
	"dispatchq/internal/ports"
	"dispatchq/internal/state"
	"dispatchq/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type admitReq struct {
	Payload map[string]string `json:"payload"`
}

func NewServer() *Server {
	ctx := context.Background()
	cfg := config.Load()

	cli := redisstate.New(cfg.Redis)
	if err := cli.Connect(ctx); err != nil {
		log.Ctx(ctx).Fatal().Msgf("something went wrong: %s", err)
	}

	states := state.NewManager(cli, cfg.Redis.StateKey)
	policy := usecase.Policy{
		Ceiling:         cfg.Queue.Ceiling,
		RateLimit:       cfg.Queue.RateLimit,
		RateWindow:      cfg.Queue.RateWindow,
		StartsRetention: cfg.Queue.StartsRetention,
	}
	admit := usecase.Admitter{States: states, Waker: cli}
	status := usecase.Status{States: states, Policy: policy, Tail: cfg.Queue.CompletedTail}
	clear := usecase.Clearer{States: states}

	return &Server{router: newRouter(admit, status, clear, cli)}
}

func newRouter(admit usecase.Admitter, status usecase.Status, clear usecase.Clearer, waker ports.Waker) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/tasks", func(w http.ResponseWriter, r *http.Request) {
		var req admitReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id, position, err := admit.Admit(r.Context(), req.Payload)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "position": position})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		v, err := status.Read(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(v)
	})

	r.Post("/clear", func(w http.ResponseWriter, r *http.Request) {
		if err := clear.Clear(r.Context()); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/dispatch", func(w http.ResponseWriter, r *http.Request) {
		if err := waker.Wake(r.Context()); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	return r
}

// writeErr maps retry-exhausted state writes to 503 so callers know to
// retry later; anything else is a plain 500.
func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, domain.ErrUnavailable) {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

type Server struct {
	router *chi.Mux
}

// Run method of the Server struct runs the HTTP server on the specified port. It initializes
// a new HTTP server instance with the specified port and the server's router.
func (s *Server) Run(port int) {
	addr := fmt.Sprintf(":%d", port)

	h := chainMiddleware(
		s.router,
		recoverHandler,
		loggerHandler(func(w http.ResponseWriter, r *http.Request) bool { return r.URL.Path == "/" }),
		realIPHandler,
		requestIDHandler,
		corsHandler,
	)

	httpServer := http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("Server forced to shutdown")
		}

		close(done)
	}()

	log.Info().Msgf("server serving on port %d", port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Failed to listen and serve")
	}

	<-done
	log.Info().Msg("Server stopped")
}
