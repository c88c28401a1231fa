// Package app provides application lifecycle management for the dailyreason server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dailyreason/dailyreason/internal/config"
)

const defaultShutdownTimeout = 10 * time.Second

// DailyReasonApp encapsulates all components needed to serve invocations
type DailyReasonApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}
}

// Start serves HTTP and, when configured, runs the scheduler. It blocks until
// ctx is cancelled, Stop is called, or either component fails.
func (app *DailyReasonApp) Start(ctx context.Context) error {
	defer close(app.done)

	ln, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		app.components.close()
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.mu.Lock()
	app.listener = ln
	app.cancel = cancel
	app.mu.Unlock()

	g, gctx := errgroup.WithContext(runCtx)

	if sched := app.components.Scheduler; sched != nil {
		g.Go(func() error {
			if err := sched.Start(gctx); err != nil {
				return fmt.Errorf("scheduler failed: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		slog.Info("Server listening", "address", ln.Addr().String())
		if err := app.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), defaultShutdownTimeout)
		defer cancel()
		return app.shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Stop asks a running Start to shut down and waits up to timeout for it to return
func (app *DailyReasonApp) Stop(timeout time.Duration) error {
	app.mu.Lock()
	cancel := app.cancel
	app.mu.Unlock()

	if cancel == nil {
		app.components.close()
		return nil
	}

	cancel()
	select {
	case <-app.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown did not complete within %s", timeout)
	}
}

func (app *DailyReasonApp) shutdown(ctx context.Context) error {
	slog.Info("Shutting down server...")

	if sched := app.components.Scheduler; sched != nil {
		if err := sched.Stop(); err != nil {
			slog.Error("Failed to stop scheduler", "error", err)
		}
	}

	err := app.httpServer.Shutdown(ctx)
	app.components.close()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *DailyReasonApp) GetConfig() *config.Config {
	return app.config
}

// Addr returns the bound listener address once Start is running
func (app *DailyReasonApp) Addr() net.Addr {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.listener == nil {
		return nil
	}
	return app.listener.Addr()
}
