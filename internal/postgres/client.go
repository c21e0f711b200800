package postgres

import (
	"context"

	"github.com/flexprice/subscriptions/internal/config"
	"github.com/flexprice/subscriptions/internal/logger"
	sentryService "github.com/flexprice/subscriptions/internal/sentry"
	"go.uber.org/fx"
)

// IClient is what services need from the database: a unit of work.
// Repositories pick the transaction up from the context.
type IClient interface {
	// WithTx wraps the given function in a transaction. Nested calls join
	// the outer transaction through a savepoint.
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

var _ IClient = (*DB)(nil)

// Module provides an fx.Option to integrate the postgres client with the application
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewDB,
			NewClient,
		),
		fx.Invoke(registerHooks),
	)
}

// NewClient returns the transaction client, instrumented when sentry is enabled
func NewClient(db *DB, cfg *config.Configuration, sentry *sentryService.Service, logger *logger.Logger) IClient {
	if cfg.Sentry.Enabled {
		return NewSentryClient(db, sentry, logger)
	}
	return db
}

func registerHooks(lc fx.Lifecycle, db *DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
}
