package workgroupapp

import (
	"net/http"

	"github.com/printdesk/printdesk/app/sdk/auth"
	"github.com/printdesk/printdesk/app/sdk/mid"
	"github.com/printdesk/printdesk/business/domain/auditbus"
	"github.com/printdesk/printdesk/business/domain/authzbus"
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
	AuditBus     *auditbus.Core
	AuthzBus     *authzbus.Core
	SessionStore session.Store
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	resolve := mid.ResolveWorkgroup(cfg.Log, cfg.WorkgroupBus, cfg.SessionStore)
	transaction := mid.BeginCommitRollback(cfg.Log, cfg.DB)

	api := newApp(cfg.WorkgroupBus, cfg.AuditBus, cfg.AuthzBus, cfg.SessionStore)

	app.HandlerFunc(http.MethodGet, version, "/workgroups", api.query,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.Workgroup, actions.ViewAny))

	app.HandlerFunc(http.MethodPost, version, "/workgroups", api.create,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.Workgroup, actions.Create), transaction)

	// The permission check for update and delete runs inside the
	// handler against the workgroup named in the path.
	app.HandlerFunc(http.MethodPut, version, "/workgroups/{workgroup_id}", api.update,
		authen, resolve, transaction)

	app.HandlerFunc(http.MethodDelete, version, "/workgroups/{workgroup_id}", api.delete,
		authen, resolve, transaction)

	app.HandlerFunc(http.MethodGet, version, "/workgroups/{workgroup_id}/audit", api.audit,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.Workgroup, actions.ViewAny))

	app.HandlerFunc(http.MethodGet, version, "/workgroups/current", api.current,
		authen, resolve)

	app.HandlerFunc(http.MethodPost, version, "/workgroups/current/switch", api.switchContext,
		authen, resolve, transaction)
}
