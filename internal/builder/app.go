package builder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/lab-assistant/internal/telegram"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App represents the application with all its components
type App struct {
	bot             telegram.Bot
	server          *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// Run starts the bot and the form server and blocks until a shutdown signal
// arrives or one of them fails
func (a *App) Run() error {
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	a.logger.Info("Starting telegram bot")
	if err := a.bot.Start(gctx); err != nil {
		return fmt.Errorf("start telegram bot: %w", err)
	}

	if a.server != nil {
		g.Go(func() error {
			a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			a.logger.Info("Received shutdown signal")
		}
		return a.shutdown()
	})

	err := g.Wait()
	if err != nil {
		a.logger.Error("Application stopped with error", zap.Error(err))
		return err
	}
	a.logger.Info("Application stopped gracefully")
	return nil
}

// shutdown stops accepting form submissions first, then drains the bot
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	var errs []error
	if a.server != nil {
		a.logger.Info("Shutting down HTTP server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	a.logger.Info("Stopping telegram bot")
	if err := a.bot.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("bot stop: %w", err))
	}

	return errors.Join(errs...)
}
