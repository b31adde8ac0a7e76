package webui

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/williamwith4ms/web-ui/pkg/relay"
)

// Server drives the HTTP lifecycle around a Router: bind handlers, Run,
// graceful shutdown on interrupt or context cancellation.
type Server struct {
	router  *Router
	httpSrv *http.Server
}

// New builds a Server for the given configuration. Handlers are bound via
// Bind/BindClick before Run; Run freezes the registry.
func New(ctx context.Context, cfg Config) (*Server, error) {
	r, err := NewRouter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Server{
		router: r,
		httpSrv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func (s *Server) Router() *Router { return s.router }

func (s *Server) Bind(elementID, eventType string, fn func(ev *relay.Event) (*relay.Response, error)) error {
	return s.router.Bind(elementID, eventType, fn)
}

func (s *Server) BindClick(elementID string, fn func()) error {
	return s.router.BindClick(elementID, fn)
}

// Run freezes the registry and serves until ctx is canceled or an interrupt
// arrives, then shuts the HTTP server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("ctx is nil")
	}
	if s == nil || s.router == nil || s.httpSrv == nil {
		return errors.New("server is not initialized")
	}
	s.router.Freeze()

	srvCtx, srvCancel := context.WithCancel(ctx)
	defer srvCancel()

	eg := errgroup.Group{}
	eg.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			log.Info().Msg("received interrupt signal, shutting down gracefully...")
		case <-srvCtx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		s.router.CloseConnections()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
			return err
		}
		log.Info().Msg("server shutdown complete")
		return nil
	})
	eg.Go(func() error {
		defer srvCancel()
		log.Info().Str("addr", s.httpSrv.Addr).Msg("starting web-ui server")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server listen error")
			return err
		}
		return nil
	})
	return eg.Wait()
}
