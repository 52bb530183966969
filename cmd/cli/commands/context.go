package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/internal/config"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
	"github.com/teamaptiv/volunteer-hub/pkg/metrics"
	"github.com/teamaptiv/volunteer-hub/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Store    *postgres.Store
	Service  *services.Service
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Logger   *zap.Logger
	Ctx      context.Context

	// AdminUsername is the account administrative commands act as
	AdminUsername string
}

// AdminPrincipal resolves AdminUsername and checks it holds admin status
func (app *AppContext) AdminPrincipal() (model.Principal, error) {
	user, err := app.Store.GetUserByUsername(app.Ctx, app.AdminUsername)
	if err != nil {
		return model.Principal{}, fmt.Errorf("failed to load admin %q: %w", app.AdminUsername, err)
	}
	if !user.IsAdmin() {
		return model.Principal{}, fmt.Errorf("user %q is not an admin", app.AdminUsername)
	}
	if !user.Active {
		return model.Principal{}, fmt.Errorf("admin %q has been deactivated", app.AdminUsername)
	}
	return model.Principal{UserID: user.ID, Status: user.Status}, nil
}
