package memberapp

import (
	"net/http"

	"github.com/printdesk/printdesk/app/sdk/auth"
	"github.com/printdesk/printdesk/app/sdk/mid"
	"github.com/printdesk/printdesk/business/domain/auditbus"
	"github.com/printdesk/printdesk/business/domain/authzbus"
	"github.com/printdesk/printdesk/business/domain/memberbus"
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
	MemberBus    *memberbus.Core
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

	api := newApp(cfg.MemberBus, cfg.AuditBus, cfg.AuthzBus)

	app.HandlerFunc(http.MethodGet, version, "/workgroups/current/members", api.query,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.Membership, actions.View))

	app.HandlerFunc(http.MethodPost, version, "/workgroups/current/members", api.apply,
		authen, resolve, mid.Authorize(cfg.AuthzBus, resource.Membership, actions.Create), transaction)

	// Update and remove re-check permissions inside the handler with the
	// role of the targeted membership.
	app.HandlerFunc(http.MethodPut, version, "/workgroups/current/members/{user_id}", api.update,
		authen, resolve, transaction)

	app.HandlerFunc(http.MethodDelete, version, "/workgroups/current/members/{user_id}", api.remove,
		authen, resolve, transaction)
}
