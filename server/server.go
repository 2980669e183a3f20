package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/alarmbot/internal/profile"
	"github.com/hrygo/alarmbot/plugin/ai/timeout"
	apierrors "github.com/hrygo/alarmbot/server/internal/errors"
	"github.com/hrygo/alarmbot/server/internal/observability"
	apiv1 "github.com/hrygo/alarmbot/server/router/api/v1"
)

// Server is the HTTP front-end of alarmbot.
type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
	logger     *slog.Logger
}

// NewServer creates a server exposing the v1 API.
func NewServer(profile *profile.Profile, apiV1Service *apiv1.APIV1Service) *Server {
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.HTTPErrorHandler = apierrors.HTTPErrorHandler(echoServer)

	logger := slog.Default()
	echoServer.Use(echomw.Recover())
	echoServer.Use(observability.Middleware(logger, apiV1Service.Metrics))
	echoServer.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	}))

	apiV1Service.RegisterRoutes(echoServer)

	return &Server{
		Profile:    profile,
		echoServer: echoServer,
		logger:     logger,
	}
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start serves HTTP until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("alarmbot server listening", "address", address, "mode", s.Profile.Mode)
		errCh <- s.echoServer.Start(address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "failed to start server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout.ShutdownTimeout)
	defer cancel()
	if err := s.echoServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shutdown server")
	}
	s.logger.Info("alarmbot server stopped")
	return nil
}
