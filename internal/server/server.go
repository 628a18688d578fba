package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/config"
	"github.com/Ignaci05/Area51Bazar/internal/metrics"
	"github.com/Ignaci05/Area51Bazar/internal/middleware"
	"github.com/Ignaci05/Area51Bazar/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Config  config.Config
	Users   repository.UserRepository
	Log     *slog.Logger
	Metrics *metrics.Metrics
	// DB / Redis の疎通確認。nilなら常にok
	Health func(ctx context.Context) error
}

// echoを組み立てる（listenはしない）
func New(opts Options, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opts.Log))
	if len(opts.Config.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: opts.Config.CORSOrigins,
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		if opts.Health != nil {
			if err := opts.Health(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}

	RegisterRoutes(e, opts.Config, opts.Users, h)
	return e
}

// ctxがキャンセルされたら処理中のリクエストを待って止める
func Run(ctx context.Context, e *echo.Echo, addr string, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
