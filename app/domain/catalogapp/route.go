package catalogapp

import (
	"net/http"

	"github.com/printdesk/printdesk/app/sdk/auth"
	"github.com/printdesk/printdesk/app/sdk/mid"
	"github.com/printdesk/printdesk/business/domain/authzbus"
	"github.com/printdesk/printdesk/business/domain/catalogbus"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/sdk/session"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/business/sdk/web"
	"github.com/printdesk/printdesk/business/types/actions"
	"github.com/printdesk/printdesk/business/types/resource"
	"github.com/printdesk/printdesk/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log          *logger.Logger
	DB           sqldb.Beginner
	Auth         *auth.Auth
	WorkgroupBus *workgroupbus.Core
	CatalogBus   *catalogbus.Core
	AuthzBus     *authzbus.Core
	SessionStore session.Store
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	resolve := mid.ResolveWorkgroup(cfg.Log, cfg.WorkgroupBus, cfg.SessionStore)
	transaction := mid.BeginCommitRollback(cfg.Log, cfg.DB)

	api := newApp(cfg.CatalogBus)

	app.HandlerFunc(http.MethodGet, version, "/catalog/categories", api.query,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.Category, actions.View))

	app.HandlerFunc(http.MethodPost, version, "/catalog/categories", api.create,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.Category, actions.Create), transaction)

	app.HandlerFunc(http.MethodPut, version, "/catalog/categories/{category_id}", api.update,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.Category, actions.Update), transaction)

	app.HandlerFunc(http.MethodPut, version, "/catalog/categories/{category_id}/move", api.move,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.Category, actions.Update), transaction)

	app.HandlerFunc(http.MethodDelete, version, "/catalog/categories/{category_id}", api.delete,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.Category, actions.Delete), transaction)
}
