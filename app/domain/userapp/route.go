package userapp

import (
	"net/http"

	"github.com/printdesk/printdesk/app/sdk/auth"
	"github.com/printdesk/printdesk/app/sdk/mid"
	"github.com/printdesk/printdesk/business/domain/authzbus"
	"github.com/printdesk/printdesk/business/domain/userbus"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/sdk/session"
	"github.com/printdesk/printdesk/business/sdk/web"
	"github.com/printdesk/printdesk/business/types/actions"
	"github.com/printdesk/printdesk/business/types/resource"
	"github.com/printdesk/printdesk/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log          *logger.Logger
	Auth         *auth.Auth
	UserBus      *userbus.Core
	WorkgroupBus *workgroupbus.Core
	AuthzBus     *authzbus.Core
	SessionStore session.Store
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	resolve := mid.ResolveWorkgroup(cfg.Log, cfg.WorkgroupBus, cfg.SessionStore)
	loadUser := mid.LoadUser(cfg.UserBus)

	api := newApp(cfg.UserBus)

	app.HandlerFunc(http.MethodGet, version, "/users", api.query,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.User, actions.ViewAny))

	app.HandlerFunc(http.MethodPost, version, "/users", api.create,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.User, actions.Create))

	app.HandlerFunc(http.MethodGet, version, "/me", api.queryByID, authen, loadUser)

	app.HandlerFunc(http.MethodPut, version, "/me", api.update, authen, loadUser)

	app.HandlerFunc(http.MethodDelete, version, "/me", api.delete, authen, loadUser)
}
