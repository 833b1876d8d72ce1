package app

import (
	"go.uber.org/zap"

	"github.com/evanhrs/budgetapp/internal/config"
)

// NewLogger builds the environment-appropriate zap logger.
func NewLogger(env string) (*zap.Logger, error) {
	if env == config.EnvProduction {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
