package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bramblewood/orgaccess/internal/authz"
	"github.com/bramblewood/orgaccess/internal/handlers"
	"github.com/bramblewood/orgaccess/internal/mw"
	"github.com/bramblewood/orgaccess/internal/store"
)

type Options struct {
	EnableCORS bool
}

type Deps struct {
	Organizations   store.OrganizationStore
	Resources       store.ResourceStore
	ProjectManagers store.ProjectManagerStore
	Roles           store.RoleStore
	Permissions     store.PermissionStore
	Authz           authz.Authorizer
}

func BuildRouter(d Deps, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if opts.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Use(mw.Trace())
	r.Use(mw.Logger(mw.LogOpts{
		SkipPaths: []string{"/health", "/version"},
	}))

	svc := handlers.NewServiceHandler(d.Authz)
	orgs := handlers.NewOrganizationHandler(d.Organizations, d.Authz)
	resources := handlers.NewResourceHandler(d.Resources, d.Authz)
	roles := handlers.NewRoleHandler(d.Roles, d.Authz)
	perms := handlers.NewPermissionHandler(d.Permissions, d.Authz)
	pms := handlers.NewProjectManagerHandler(d.ProjectManagers, d.Authz)

	r.Get("/", svc.Root)
	r.Get("/health", svc.Health)
	r.Get("/rbac-info", svc.RBACInfo)
	r.Get("/version", svc.Version)

	r.Route("/organizations", func(r chi.Router) {
		r.Get("/", orgs.List)
		r.Post("/", orgs.Create)
		r.Get("/{id}", orgs.Get)
		r.Put("/{id}", orgs.Update)
		r.Delete("/{id}", orgs.Delete)
		r.Post("/{id}/members", orgs.AddMember)
		r.Delete("/{id}/members/{memberID}", orgs.RemoveMember)
	})

	r.Route("/resources", func(r chi.Router) {
		r.Get("/", resources.List)
		r.Post("/", resources.Create)
		r.Get("/{id}", resources.Get)
		r.Put("/{id}", resources.Update)
		r.Delete("/{id}", resources.Delete)
		r.Get("/{id}/permissions", resources.Permissions)
	})

	r.Route("/roles", func(r chi.Router) {
		r.Get("/", roles.List)
		r.Post("/", roles.Create)
		r.Post("/assign", roles.Assign)
		r.Delete("/assign", roles.Unassign)
		r.Get("/{id}", roles.Get)
		r.Put("/{id}", roles.Update)
	})

	r.Route("/permissions", func(r chi.Router) {
		r.Get("/", perms.List)
		r.Post("/", perms.Create)
		r.Post("/check", perms.Check)
		r.Get("/user/{userID}", perms.UserPermissions)
		r.Get("/{id}", perms.Get)
		r.Put("/{id}", perms.Update)
	})

	r.Route("/project-managers", func(r chi.Router) {
		r.Get("/", pms.List)
		r.Post("/", pms.Create)
		r.Get("/{id}", pms.Get)
		r.Put("/{id}", pms.Update)
		r.Post("/{id}/assign", pms.Assign)
		r.Delete("/{id}/assign/{orgID}", pms.RemoveAssignment)
	})

	return r
}
