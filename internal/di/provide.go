package di

import (
	"context"
	"fmt"

	"github.com/bramblewood/orgaccess/internal/authz"
	"github.com/bramblewood/orgaccess/internal/config"
	"github.com/bramblewood/orgaccess/internal/server"
	"github.com/bramblewood/orgaccess/internal/store"
)

// ProvideAuthorizer picks the relationship-store backend from config. The
// memory backend exists for tests and dependency-free dev runs; everything
// else should point at a real store.
func ProvideAuthorizer(cfg *config.Config) (authz.Authorizer, error) {
	switch cfg.FGA.Backend {
	case "openfga":
		return authz.NewOpenFGA(authz.OpenFGAConfig{
			APIURL:   cfg.FGA.APIURL,
			StoreID:  cfg.FGA.StoreID,
			ModelID:  cfg.FGA.ModelID,
			APIToken: cfg.FGA.APIToken,
			Timeout:  cfg.FGA.Timeout,
		})
	case "memory":
		return authz.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown fga backend %q", cfg.FGA.Backend)
	}
}

// ProvideDeps assembles the stores behind the router. The relational backend
// covers organizations and resources; the catalog entities stay in memory in
// either mode.
func ProvideDeps(ctx context.Context, cfg *config.Config, a authz.Authorizer) (server.Deps, func(), error) {
	mem := store.NewMemory()
	deps := server.Deps{
		Organizations:   mem,
		Resources:       mem,
		ProjectManagers: mem,
		Roles:           mem,
		Permissions:     mem,
		Authz:           a,
	}
	cleanup := func() {}

	if cfg.Store == "postgres" {
		pg, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return server.Deps{}, nil, err
		}
		if err := pg.InitSchema(ctx); err != nil {
			pg.Close()
			return server.Deps{}, nil, err
		}
		deps.Organizations = pg
		deps.Resources = pg
		cleanup = func() { pg.Close() }
	}

	return deps, cleanup, nil
}
