package authapp

import (
	"net/http"

	"github.com/printdesk/printdesk/app/sdk/auth"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/sdk/session"
	"github.com/printdesk/printdesk/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth         *auth.Auth
	ActiveKID    string
	WorkgroupBus *workgroupbus.Core
	SessionStore session.Store
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.Auth, cfg.ActiveKID, cfg.WorkgroupBus, cfg.SessionStore)

	app.HandlerFunc(http.MethodPost, version, "/auth/login", api.login)
}
