package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// Run serves HTTP, routes events and runs the notification queue until ctx
// is cancelled or one of them fails.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.Router.Run(ctx); err != nil {
			return fmt.Errorf("message router: %w", err)
		}
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go app.NotificationModule.Run(ctx, &wg)

	g.Go(func() error {
		app.logger.InfoContext(ctx, "Starting HTTP server", attr.String("addr", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("HTTP server shutdown failed", attr.Error(err))
		}
		return nil
	})

	err := g.Wait()
	wg.Wait()
	return err
}
