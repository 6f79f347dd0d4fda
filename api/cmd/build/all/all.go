// Package all binds all the routes into the specified app.
package all

import (
	"github.com/printdesk/printdesk/app/domain/authapp"
	"github.com/printdesk/printdesk/app/domain/catalogapp"
	"github.com/printdesk/printdesk/app/domain/memberapp"
	"github.com/printdesk/printdesk/app/domain/userapp"
	"github.com/printdesk/printdesk/app/domain/workgroupapp"
	"github.com/printdesk/printdesk/app/sdk/mux"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/business/sdk/web"
)

// Routes constructs the add value which provides the implementation of
// RouteAdder for specifying what routes to bind to this instance.
func Routes() add {
	return add{}
}

type add struct{}

func (add) Add(app *web.App, cfg mux.Config) {
	beginner := sqldb.NewBeginner(cfg.DB)

	authapp.Routes(app, authapp.Config{
		Auth:         cfg.AuthConfig.Auth,
		ActiveKID:    cfg.AuthConfig.ActiveKID,
		WorkgroupBus: cfg.BusConfig.WorkgroupBus,
		SessionStore: cfg.SessionStore,
	})

	userapp.Routes(app, userapp.Config{
		Log:          cfg.Log,
		Auth:         cfg.AuthConfig.Auth,
		UserBus:      cfg.BusConfig.UserBus,
		WorkgroupBus: cfg.BusConfig.WorkgroupBus,
		AuthzBus:     cfg.BusConfig.AuthzBus,
		SessionStore: cfg.SessionStore,
	})

	workgroupapp.Routes(app, workgroupapp.Config{
		Log:          cfg.Log,
		DB:           beginner,
		Auth:         cfg.AuthConfig.Auth,
		WorkgroupBus: cfg.BusConfig.WorkgroupBus,
		AuditBus:     cfg.BusConfig.AuditBus,
		AuthzBus:     cfg.BusConfig.AuthzBus,
		SessionStore: cfg.SessionStore,
	})

	memberapp.Routes(app, memberapp.Config{
		Log:          cfg.Log,
		DB:           beginner,
		Auth:         cfg.AuthConfig.Auth,
		WorkgroupBus: cfg.BusConfig.WorkgroupBus,
		MemberBus:    cfg.BusConfig.MemberBus,
		AuditBus:     cfg.BusConfig.AuditBus,
		AuthzBus:     cfg.BusConfig.AuthzBus,
		SessionStore: cfg.SessionStore,
	})

	catalogapp.Routes(app, catalogapp.Config{
		Log:          cfg.Log,
		DB:           beginner,
		Auth:         cfg.AuthConfig.Auth,
		WorkgroupBus: cfg.BusConfig.WorkgroupBus,
		CatalogBus:   cfg.BusConfig.CatalogBus,
		AuthzBus:     cfg.BusConfig.AuthzBus,
		SessionStore: cfg.SessionStore,
	})
}
