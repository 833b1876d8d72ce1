package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/evanhrs/budgetapp/internal/auth"
	"github.com/evanhrs/budgetapp/internal/cli"
	"github.com/evanhrs/budgetapp/internal/config"
	"github.com/evanhrs/budgetapp/internal/database"
	"github.com/evanhrs/budgetapp/internal/migration"
	"github.com/evanhrs/budgetapp/internal/resettoken"
	"github.com/evanhrs/budgetapp/internal/session"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		// Logger
		fx.Provide(newLogger),

		// Configuration
		fx.Provide(config.Load),

		// Storage and schema
		database.Module(),
		migration.Module(),

		// Security core
		auth.NewModule(),

		// Demo CLI
		fx.Provide(cli.New),

		// Start the console loop
		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return NewLogger(env)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	console *cli.Console,
	tokens *resettoken.Manager,
	sessions *session.Manager,
	shutdowner fx.Shutdowner,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Expired rows are ignored on access anyway; the sweep just
			// keeps the tables from growing unbounded.
			if err := tokens.SweepExpired(); err != nil {
				log.Warn("reset token sweep failed", zap.Error(err))
			}
			if err := sessions.SweepExpired(); err != nil {
				log.Warn("session sweep failed", zap.Error(err))
			}

			go func() {
				console.Run()
				if err := shutdowner.Shutdown(); err != nil {
					log.Error("shutdown failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down")
			return nil
		},
	})
}
