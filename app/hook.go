package app

import "errors"

// Close releases the event publisher and the database pool.
func (app *App) Close() error {
	var errs []error
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
