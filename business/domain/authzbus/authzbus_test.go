package authzbus_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/authzbus"
	"github.com/printdesk/printdesk/business/domain/authzbus/stores/policycache"
	"github.com/printdesk/printdesk/business/domain/memberbus"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/business/types/actions"
	"github.com/printdesk/printdesk/business/types/memberstatus"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/resource"
	"github.com/printdesk/printdesk/business/types/role"
	"github.com/printdesk/printdesk/business/types/slug"
	"github.com/printdesk/printdesk/business/types/tenantkind"
	"github.com/printdesk/printdesk/business/types/tenantstatus"
	"github.com/printdesk/printdesk/foundation/logger"
	"github.com/stretchr/testify/require"
)

type fakeMemberStore struct {
	memberships []memberbus.Membership
}

func (s *fakeMemberStore) NewWithTx(tx sqldb.CommitRollbacker) (memberbus.Storer, error) {
	return s, nil
}

func (s *fakeMemberStore) Upsert(_ context.Context, m memberbus.Membership) error {
	s.memberships = append(s.memberships, m)
	return nil
}

func (s *fakeMemberStore) Update(_ context.Context, m memberbus.Membership) error {
	return nil
}

func (s *fakeMemberStore) Delete(_ context.Context, m memberbus.Membership) error {
	return nil
}

func (s *fakeMemberStore) ClearDefault(_ context.Context, userID uuid.UUID) error {
	return nil
}

func (s *fakeMemberStore) SetUserDefault(_ context.Context, _ uuid.UUID, _ *uuid.UUID) error {
	return nil
}

func (s *fakeMemberStore) QueryByKey(_ context.Context, userID uuid.UUID, workgroupID uuid.UUID) (memberbus.Membership, error) {
	for _, m := range s.memberships {
		if m.UserID == userID && m.WorkgroupID == workgroupID {
			return m, nil
		}
	}
	return memberbus.Membership{}, memberbus.ErrNotFound
}

func (s *fakeMemberStore) QueryByUser(_ context.Context, userID uuid.UUID) ([]memberbus.Membership, error) {
	var ms []memberbus.Membership
	for _, m := range s.memberships {
		if m.UserID == userID {
			ms = append(ms, m)
		}
	}
	return ms, nil
}

func (s *fakeMemberStore) QueryByWorkgroup(_ context.Context, workgroupID uuid.UUID) ([]memberbus.Membership, error) {
	var ms []memberbus.Membership
	for _, m := range s.memberships {
		if m.WorkgroupID == workgroupID {
			ms = append(ms, m)
		}
	}
	return ms, nil
}

func (s *fakeMemberStore) ExistsRoleAnywhere(_ context.Context, userID uuid.UUID, r role.Role) (bool, error) {
	for _, m := range s.memberships {
		if m.UserID == userID && m.Role.Equal(r) && m.Status.Equal(memberstatus.Active) {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================

type fixture struct {
	core    *authzbus.Core
	members *fakeMemberStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	policies, err := policycache.NewStore(log)
	require.NoError(t, err)

	members := &fakeMemberStore{}

	return &fixture{
		core:    authzbus.NewCore(log, memberbus.NewCore(log, members), policies),
		members: members,
	}
}

func (f *fixture) grant(userID uuid.UUID, workgroupID uuid.UUID, r role.Role, status memberstatus.Status) {
	now := time.Now()
	f.members.memberships = append(f.members.memberships, memberbus.Membership{
		UserID:      userID,
		WorkgroupID: workgroupID,
		Role:        r,
		Status:      status,
		JoinedAt:    now,
		UpdatedAt:   now,
	})
}

func testWorkgroup(publicDefault bool) workgroupbus.Workgroup {
	return workgroupbus.Workgroup{
		ID:              uuid.New(),
		Name:            name.MustParse("Print Shop"),
		Slug:            slug.MustParse("print-shop"),
		Kind:            tenantkind.Company,
		Status:          tenantstatus.Active,
		IsPublicDefault: publicDefault,
	}
}

// =============================================================================

func Test_SuperAdminBypass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	homeWG := testWorkgroup(false)
	otherWG := testWorkgroup(false)

	f.grant(userID, homeWG.ID, role.SuperAdmin, memberstatus.Active)

	// Super admin status is global, the check passes in a workgroup the
	// user holds no membership in.
	err := f.core.Authorize(ctx, userID, authzbus.Check{
		Resource:  resource.Category,
		Action:    actions.Delete,
		Workgroup: &otherWG,
	})
	require.NoError(t, err)

	err = f.core.Authorize(ctx, userID, authzbus.Check{
		Resource:  resource.Workgroup,
		Action:    actions.Create,
		Workgroup: &otherWG,
	})
	require.NoError(t, err)
}

func Test_SuspendedSuperAdminHasNoBypass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	wg := testWorkgroup(false)
	f.grant(userID, wg.ID, role.SuperAdmin, memberstatus.Suspended)

	err := f.core.Authorize(ctx, userID, authzbus.Check{
		Resource:  resource.Workgroup,
		Action:    actions.Create,
		Workgroup: &wg,
	})
	require.ErrorIs(t, err, authzbus.ErrForbidden)
}

func Test_PublicDefaultDeleteRefusedBeforeBypass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	publicWG := testWorkgroup(true)
	f.grant(userID, publicWG.ID, role.SuperAdmin, memberstatus.Active)

	err := f.core.Authorize(ctx, userID, authzbus.Check{
		Resource:  resource.Workgroup,
		Action:    actions.Delete,
		Workgroup: &publicWG,
	})
	require.ErrorIs(t, err, authzbus.ErrForbidden)
}

func Test_WorkgroupLifecycleRequiresSuperAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	wg := testWorkgroup(false)
	f.grant(userID, wg.ID, role.Admin, memberstatus.Active)

	err := f.core.Authorize(ctx, userID, authzbus.Check{
		Resource:  resource.Workgroup,
		Action:    actions.Create,
		Workgroup: &wg,
	})
	require.ErrorIs(t, err, authzbus.ErrForbidden)

	err = f.core.Authorize(ctx, userID, authzbus.Check{
		Resource:  resource.Workgroup,
		Action:    actions.Delete,
		Workgroup: &wg,
	})
	require.ErrorIs(t, err, authzbus.ErrForbidden)
}

func Test_AdminTargetDeleteRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	wg := testWorkgroup(false)
	f.grant(userID, wg.ID, role.Admin, memberstatus.Active)

	target := role.Admin
	err := f.core.Authorize(ctx, userID, authzbus.Check{
		Resource:   resource.Membership,
		Action:     actions.Delete,
		Workgroup:  &wg,
		TargetRole: &target,
	})
	require.ErrorIs(t, err, authzbus.ErrForbidden)

	// The same admin may remove a regular member.
	target = role.Member
	err = f.core.Authorize(ctx, userID, authzbus.Check{
		Resource:   resource.Membership,
		Action:     actions.Delete,
		Workgroup:  &wg,
		TargetRole: &target,
	})
	require.NoError(t, err)
}

func Test_RoleMatrix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wg := testWorkgroup(false)

	member := uuid.New()
	designer := uuid.New()
	manager := uuid.New()
	admin := uuid.New()

	f.grant(member, wg.ID, role.Member, memberstatus.Active)
	f.grant(designer, wg.ID, role.Designer, memberstatus.Active)
	f.grant(manager, wg.ID, role.Manager, memberstatus.Active)
	f.grant(admin, wg.ID, role.Admin, memberstatus.Active)

	tests := []struct {
		name    string
		userID  uuid.UUID
		res     resource.Resource
		act     actions.Action
		allowed bool
	}{
		{"member views categories", member, resource.Category, actions.View, true},
		{"member cannot create categories", member, resource.Category, actions.Create, false},
		{"member cannot view members", member, resource.Membership, actions.View, false},
		{"designer creates categories", designer, resource.Category, actions.Create, true},
		{"designer inherits category view", designer, resource.Category, actions.View, true},
		{"designer cannot update workgroup", designer, resource.Workgroup, actions.Update, false},
		{"manager inherits category create", manager, resource.Category, actions.Create, true},
		{"manager updates workgroup", manager, resource.Workgroup, actions.Update, true},
		{"manager views members", manager, resource.Membership, actions.View, true},
		{"manager cannot add members", manager, resource.Membership, actions.Create, false},
		{"admin adds members", admin, resource.Membership, actions.Create, true},
		{"admin inherits workgroup update", admin, resource.Workgroup, actions.Update, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.core.Authorize(ctx, tt.userID, authzbus.Check{
				Resource:  tt.res,
				Action:    tt.act,
				Workgroup: &wg,
			})

			if tt.allowed {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, authzbus.ErrForbidden)
			}
		})
	}
}

func Test_PublicDefaultViewOpenToAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	publicWG := testWorkgroup(true)

	// No membership rows exist for this user at all.
	strangerID := uuid.New()

	err := f.core.Authorize(ctx, strangerID, authzbus.Check{
		Resource:  resource.Workgroup,
		Action:    actions.View,
		Workgroup: &publicWG,
	})
	require.NoError(t, err)

	err = f.core.Authorize(ctx, strangerID, authzbus.Check{
		Resource:  resource.Category,
		Action:    actions.View,
		Workgroup: &publicWG,
	})
	require.NoError(t, err)

	// Anonymous requests carry the zero user id.
	err = f.core.Authorize(ctx, uuid.Nil, authzbus.Check{
		Resource:  resource.Workgroup,
		Action:    actions.View,
		Workgroup: &publicWG,
	})
	require.NoError(t, err)

	// The allowance stops at viewing. Memberships and mutations still
	// require a real membership.
	err = f.core.Authorize(ctx, strangerID, authzbus.Check{
		Resource:  resource.Membership,
		Action:    actions.View,
		Workgroup: &publicWG,
	})
	require.ErrorIs(t, err, authzbus.ErrForbidden)

	err = f.core.Authorize(ctx, strangerID, authzbus.Check{
		Resource:  resource.Category,
		Action:    actions.Create,
		Workgroup: &publicWG,
	})
	require.ErrorIs(t, err, authzbus.ErrForbidden)
}

func Test_NoMembershipDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wg := testWorkgroup(false)

	err := f.core.Authorize(ctx, uuid.New(), authzbus.Check{
		Resource:  resource.Category,
		Action:    actions.View,
		Workgroup: &wg,
	})
	require.ErrorIs(t, err, authzbus.ErrForbidden)
}

func Test_SuspendedMembershipDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	wg := testWorkgroup(false)
	f.grant(userID, wg.ID, role.Admin, memberstatus.Suspended)

	err := f.core.Authorize(ctx, userID, authzbus.Check{
		Resource:  resource.Membership,
		Action:    actions.Create,
		Workgroup: &wg,
	})
	require.ErrorIs(t, err, authzbus.ErrForbidden)
}

func Test_InvalidateDropsCachedBypass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	wg := testWorkgroup(false)
	f.grant(userID, wg.ID, role.SuperAdmin, memberstatus.Active)

	err := f.core.Authorize(ctx, userID, authzbus.Check{
		Resource:  resource.Workgroup,
		Action:    actions.Create,
		Workgroup: &wg,
	})
	require.NoError(t, err)

	// Revoke the membership behind the cache, then invalidate.
	f.members.memberships = nil
	f.core.Invalidate(userID)

	err = f.core.Authorize(ctx, userID, authzbus.Check{
		Resource:  resource.Workgroup,
		Action:    actions.Create,
		Workgroup: &wg,
	})
	require.ErrorIs(t, err, authzbus.ErrForbidden)
}
