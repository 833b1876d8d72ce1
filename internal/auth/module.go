package auth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/evanhrs/budgetapp/internal/bypass"
	"github.com/evanhrs/budgetapp/internal/clock"
	"github.com/evanhrs/budgetapp/internal/config"
	"github.com/evanhrs/budgetapp/internal/lockout"
	"github.com/evanhrs/budgetapp/internal/password"
	"github.com/evanhrs/budgetapp/internal/resettoken"
	"github.com/evanhrs/budgetapp/internal/session"
	"github.com/evanhrs/budgetapp/internal/store"
)

// NewModule returns the security-core module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func() clock.Clock { return clock.System() },
			),
			fx.Annotate(
				func(cfg *config.AppConfig) *password.Hasher {
					return password.NewHasher(cfg.Security.BcryptCost)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig) password.Policy {
					return password.Policy{
						MinLength: cfg.Security.Password.MinLength,
						MaxLength: cfg.Security.Password.MaxLength,
					}
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig, st store.Store, clk clock.Clock, log *zap.Logger) *lockout.Guard {
					return lockout.NewGuard(st.Users(), clk, log,
						cfg.Security.MaxFailedAttempts, cfg.Security.LockoutCooldown)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig, st store.Store, clk clock.Clock, log *zap.Logger) *resettoken.Manager {
					return resettoken.NewManager(st.ResetTokens(), clk, log,
						cfg.Security.ResetTokenTTL)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig, st store.Store, clk clock.Clock, log *zap.Logger) *session.Manager {
					return session.NewManager(st.Sessions(), clk, log,
						cfg.Security.SessionIdle, cfg.Security.SessionAbsolute)
				},
			),
			fx.Annotate(
				func() *bypass.AuditLog { return bypass.NewAuditLog() },
			),
			fx.Annotate(
				func(cfg *config.AppConfig, st store.Store, guard *lockout.Guard, audit *bypass.AuditLog, clk clock.Clock, log *zap.Logger) *bypass.Service {
					return bypass.NewService(st.Users(), guard, audit, clk, log,
						cfg.Security.AdminSecretHash)
				},
			),
			fx.Annotate(
				func(st store.Store, hasher *password.Hasher, policy password.Policy, guard *lockout.Guard, tokens *resettoken.Manager, sessions *session.Manager, log *zap.Logger) *Service {
					return NewService(st.Users(), hasher, policy, guard, tokens, sessions, log)
				},
			),
		),
	)
}
