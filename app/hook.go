package app

import (
	"errors"

	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
)

// Close releases everything NewApp opened, newest first.
func (app *App) Close() error {
	app.logger.Info("Shutting down application")

	var errs []error
	if app.NotificationModule != nil {
		errs = append(errs, app.NotificationModule.Close())
	}
	if app.Router != nil {
		errs = append(errs, app.Router.Close())
	}
	if app.EventBus != nil {
		errs = append(errs, app.EventBus.Close())
	}
	if app.natsConn != nil {
		app.natsConn.Close()
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}

	err := errors.Join(errs...)
	if err != nil {
		app.logger.Error("Shutdown finished with errors", attr.Error(err))
	}
	return err
}
