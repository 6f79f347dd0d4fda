// Package authapp maintains the app layer api for the auth domain.
package authapp

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/app/sdk/auth"
	"github.com/printdesk/printdesk/app/sdk/errs"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/sdk/session"
	"github.com/printdesk/printdesk/business/sdk/web"
)

type app struct {
	auth         *auth.Auth
	activeKID    string
	workgroupBus *workgroupbus.Core
	sess         session.Store
}

// newApp constructs an auth app API for use.
func newApp(auth *auth.Auth, activeKID string, workgroupBus *workgroupbus.Core, sess session.Store) *app {
	return &app{
		auth:         auth,
		activeKID:    activeKID,
		workgroupBus: workgroupBus,
		sess:         sess,
	}
}

// login verifies the credentials, resolves the workgroup the user will
// start in and returns a signed token. The session key is the token id
// so there is no session to consult yet, resolution falls through to
// the default membership or the public default workgroup.
func (a *app) login(ctx context.Context, r *http.Request) web.Encoder {
	var req Login

	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("parsing email: %w", err))
	}

	usr, err := a.auth.Login(ctx, *addr, req.Password)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	workgroupID := uuid.Nil
	if wg, err := a.workgroupBus.ResolveContext(ctx, usr.ID, a.sess, ""); err == nil {
		workgroupID = wg.ID
	}

	tokenStr, err := a.auth.GenerateToken(a.activeKID, usr.ID, workgroupID)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	return toAppToken(tokenStr)
}
