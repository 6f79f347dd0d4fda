package workgroupbus_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/auditbus"
	"github.com/printdesk/printdesk/business/domain/memberbus"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/sdk/order"
	"github.com/printdesk/printdesk/business/sdk/page"
	"github.com/printdesk/printdesk/business/sdk/session"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/business/types/memberstatus"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/role"
	"github.com/printdesk/printdesk/business/types/slug"
	"github.com/printdesk/printdesk/business/types/tenantkind"
	"github.com/printdesk/printdesk/business/types/tenantstatus"
	"github.com/printdesk/printdesk/foundation/logger"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// In-memory fakes

type fakeWorkgroupStore struct {
	workgroups map[uuid.UUID]workgroupbus.Workgroup
}

func newFakeWorkgroupStore() *fakeWorkgroupStore {
	return &fakeWorkgroupStore{workgroups: make(map[uuid.UUID]workgroupbus.Workgroup)}
}

func (s *fakeWorkgroupStore) NewWithTx(tx sqldb.CommitRollbacker) (workgroupbus.Storer, error) {
	return s, nil
}

func (s *fakeWorkgroupStore) Create(_ context.Context, wg workgroupbus.Workgroup) error {
	for _, existing := range s.workgroups {
		if existing.Slug.Equal(wg.Slug) {
			return fmt.Errorf("namedexeccontext: %w", sqldb.ErrDBDuplicatedEntry{Column: "slug"})
		}
	}
	s.workgroups[wg.ID] = wg
	return nil
}

func (s *fakeWorkgroupStore) Update(_ context.Context, wg workgroupbus.Workgroup) error {
	s.workgroups[wg.ID] = wg
	return nil
}

func (s *fakeWorkgroupStore) Delete(_ context.Context, wg workgroupbus.Workgroup) error {
	delete(s.workgroups, wg.ID)
	return nil
}

func (s *fakeWorkgroupStore) Query(_ context.Context, _ order.By, _ page.Page) ([]workgroupbus.Workgroup, error) {
	wgs := make([]workgroupbus.Workgroup, 0, len(s.workgroups))
	for _, wg := range s.workgroups {
		wgs = append(wgs, wg)
	}
	return wgs, nil
}

func (s *fakeWorkgroupStore) Count(_ context.Context) (int, error) {
	return len(s.workgroups), nil
}

func (s *fakeWorkgroupStore) QueryByID(_ context.Context, workgroupID uuid.UUID) (workgroupbus.Workgroup, error) {
	wg, exists := s.workgroups[workgroupID]
	if !exists {
		return workgroupbus.Workgroup{}, workgroupbus.ErrNotFound
	}
	return wg, nil
}

func (s *fakeWorkgroupStore) QueryBySlug(_ context.Context, slugValue string) (workgroupbus.Workgroup, error) {
	for _, wg := range s.workgroups {
		if wg.Slug.String() == slugValue {
			return wg, nil
		}
	}
	return workgroupbus.Workgroup{}, workgroupbus.ErrNotFound
}

func (s *fakeWorkgroupStore) QueryPublicDefault(_ context.Context) (workgroupbus.Workgroup, error) {
	for _, wg := range s.workgroups {
		if wg.IsPublicDefault {
			return wg, nil
		}
	}
	return workgroupbus.Workgroup{}, workgroupbus.ErrNotFound
}

type fakeMemberStore struct {
	memberships []memberbus.Membership
}

func (s *fakeMemberStore) NewWithTx(tx sqldb.CommitRollbacker) (memberbus.Storer, error) {
	return s, nil
}

func (s *fakeMemberStore) Upsert(_ context.Context, m memberbus.Membership) error {
	for i, existing := range s.memberships {
		if existing.UserID == m.UserID && existing.WorkgroupID == m.WorkgroupID {
			s.memberships[i] = m
			return nil
		}
	}
	s.memberships = append(s.memberships, m)
	return nil
}

func (s *fakeMemberStore) Update(_ context.Context, m memberbus.Membership) error {
	for i, existing := range s.memberships {
		if existing.UserID == m.UserID && existing.WorkgroupID == m.WorkgroupID {
			s.memberships[i] = m
		}
	}
	return nil
}

func (s *fakeMemberStore) Delete(_ context.Context, m memberbus.Membership) error {
	for i, existing := range s.memberships {
		if existing.UserID == m.UserID && existing.WorkgroupID == m.WorkgroupID {
			s.memberships = append(s.memberships[:i], s.memberships[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakeMemberStore) ClearDefault(_ context.Context, userID uuid.UUID) error {
	for i, m := range s.memberships {
		if m.UserID == userID {
			s.memberships[i].IsDefault = false
		}
	}
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

type fakeAuditStore struct {
	events []auditbus.Event
}

func (s *fakeAuditStore) NewWithTx(tx sqldb.CommitRollbacker) (auditbus.Storer, error) {
	return s, nil
}

func (s *fakeAuditStore) Create(_ context.Context, evt auditbus.Event) error {
	s.events = append(s.events, evt)
	return nil
}

func (s *fakeAuditStore) QueryByWorkgroup(_ context.Context, workgroupID uuid.UUID) ([]auditbus.Event, error) {
	var evts []auditbus.Event
	for _, evt := range s.events {
		if evt.WorkgroupID != nil && *evt.WorkgroupID == workgroupID {
			evts = append(evts, evt)
		}
	}
	return evts, nil
}

// =============================================================================

type fixture struct {
	core        *workgroupbus.Core
	workgroups  *fakeWorkgroupStore
	memberships *fakeMemberStore
	audits      *fakeAuditStore
	sess        *session.MemoryStore
}

func newFixture(t *testing.T, membershipResolution bool) *fixture {
	t.Helper()

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	workgroups := newFakeWorkgroupStore()
	memberships := &fakeMemberStore{}
	audits := &fakeAuditStore{}

	memberBus := memberbus.NewCore(log, memberships)
	auditBus := auditbus.NewCore(log, audits)

	return &fixture{
		core:        workgroupbus.NewCore(log, memberBus, auditBus, workgroups, membershipResolution),
		workgroups:  workgroups,
		memberships: memberships,
		audits:      audits,
		sess:        session.NewMemoryStore(),
	}
}

func (f *fixture) addWorkgroup(t *testing.T, nameValue string, slugValue string, publicDefault bool, status tenantstatus.Status) workgroupbus.Workgroup {
	t.Helper()

	now := time.Now()
	wg := workgroupbus.Workgroup{
		ID:              uuid.New(),
		Name:            name.MustParse(nameValue),
		Slug:            slug.MustParse(slugValue),
		Kind:            tenantkind.Company,
		Status:          status,
		IsPublicDefault: publicDefault,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.workgroups.workgroups[wg.ID] = wg

	return wg
}

func (f *fixture) addMembership(userID uuid.UUID, workgroupID uuid.UUID, isDefault bool, status memberstatus.Status, joinedAt time.Time) {
	f.memberships.memberships = append(f.memberships.memberships, memberbus.Membership{
		UserID:      userID,
		WorkgroupID: workgroupID,
		Role:        role.Member,
		Status:      status,
		IsDefault:   isDefault,
		JoinedAt:    joinedAt,
		UpdatedAt:   joinedAt,
	})
}

// =============================================================================

func Test_Resolve_SessionChoiceWins(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	userID := uuid.New()

	f.addWorkgroup(t, "Public Shop", "public-shop", true, tenantstatus.Active)
	defaultWG := f.addWorkgroup(t, "Default Shop", "default-shop", false, tenantstatus.Active)
	chosenWG := f.addWorkgroup(t, "Chosen Shop", "chosen-shop", false, tenantstatus.Active)

	f.addMembership(userID, defaultWG.ID, true, memberstatus.Active, time.Now())
	f.addMembership(userID, chosenWG.ID, false, memberstatus.Active, time.Now())

	require.NoError(t, f.sess.SetActiveWorkgroup(ctx, "sess-1", chosenWG.ID))

	wg, err := f.core.ResolveContext(ctx, userID, f.sess, "sess-1")
	require.NoError(t, err)
	require.Equal(t, chosenWG.ID, wg.ID)
}

func Test_Resolve_StaleSessionFallsBack(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	userID := uuid.New()

	f.addWorkgroup(t, "Public Shop", "public-shop", true, tenantstatus.Active)
	defaultWG := f.addWorkgroup(t, "Default Shop", "default-shop", false, tenantstatus.Active)

	f.addMembership(userID, defaultWG.ID, true, memberstatus.Active, time.Now())

	// Session points at a workgroup that no longer exists.
	require.NoError(t, f.sess.SetActiveWorkgroup(ctx, "sess-1", uuid.New()))

	wg, err := f.core.ResolveContext(ctx, userID, f.sess, "sess-1")
	require.NoError(t, err)
	require.Equal(t, defaultWG.ID, wg.ID)

	// The stale choice was replaced with the resolved one.
	stored, err := f.sess.ActiveWorkgroup(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, defaultWG.ID, stored)
}

func Test_Resolve_RevokedMembershipIgnoresSession(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	userID := uuid.New()

	publicWG := f.addWorkgroup(t, "Public Shop", "public-shop", true, tenantstatus.Active)
	chosenWG := f.addWorkgroup(t, "Chosen Shop", "chosen-shop", false, tenantstatus.Active)

	f.addMembership(userID, chosenWG.ID, false, memberstatus.Suspended, time.Now())

	require.NoError(t, f.sess.SetActiveWorkgroup(ctx, "sess-1", chosenWG.ID))

	wg, err := f.core.ResolveContext(ctx, userID, f.sess, "sess-1")
	require.NoError(t, err)
	require.Equal(t, publicWG.ID, wg.ID)
}

func Test_Resolve_DefaultMembership(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	userID := uuid.New()

	f.addWorkgroup(t, "Public Shop", "public-shop", true, tenantstatus.Active)
	defaultWG := f.addWorkgroup(t, "Default Shop", "default-shop", false, tenantstatus.Active)

	f.addMembership(userID, defaultWG.ID, true, memberstatus.Active, time.Now())

	wg, err := f.core.ResolveContext(ctx, userID, f.sess, "sess-1")
	require.NoError(t, err)
	require.Equal(t, defaultWG.ID, wg.ID)
}

func Test_Resolve_DefaultTiebreak(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	userID := uuid.New()

	older := f.addWorkgroup(t, "Older Shop", "older-shop", false, tenantstatus.Active)
	newer := f.addWorkgroup(t, "Newer Shop", "newer-shop", false, tenantstatus.Active)

	// Both rows flagged default, the most recently joined one wins.
	f.addMembership(userID, older.ID, true, memberstatus.Active, time.Now().Add(-time.Hour))
	f.addMembership(userID, newer.ID, true, memberstatus.Active, time.Now())

	wg, err := f.core.ResolveContext(ctx, userID, f.sess, "")
	require.NoError(t, err)
	require.Equal(t, newer.ID, wg.ID)
}

func Test_Resolve_PublicDefaultFallback(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	publicWG := f.addWorkgroup(t, "Public Shop", "public-shop", true, tenantstatus.Active)

	wg, err := f.core.ResolveContext(ctx, uuid.New(), f.sess, "sess-1")
	require.NoError(t, err)
	require.Equal(t, publicWG.ID, wg.ID)
}

func Test_Resolve_NoPublicDefault(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.core.ResolveContext(ctx, uuid.New(), f.sess, "sess-1")
	require.ErrorIs(t, err, workgroupbus.ErrNoPublicDefault)
}

func Test_Resolve_MembershipResolutionDisabled(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	userID := uuid.New()

	publicWG := f.addWorkgroup(t, "Public Shop", "public-shop", true, tenantstatus.Active)
	chosenWG := f.addWorkgroup(t, "Chosen Shop", "chosen-shop", false, tenantstatus.Active)

	f.addMembership(userID, chosenWG.ID, true, memberstatus.Active, time.Now())
	require.NoError(t, f.sess.SetActiveWorkgroup(ctx, "sess-1", chosenWG.ID))

	// With resolution disabled the session and default membership are
	// both ignored.
	wg, err := f.core.ResolveContext(ctx, userID, f.sess, "sess-1")
	require.NoError(t, err)
	require.Equal(t, publicWG.ID, wg.ID)
}

func Test_Switch_MemberWorkgroup(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	userID := uuid.New()

	target := f.addWorkgroup(t, "Target Shop", "target-shop", false, tenantstatus.Active)
	f.addMembership(userID, target.ID, false, memberstatus.Active, time.Now())

	wg, err := f.core.SwitchContext(ctx, userID, target.ID, f.sess, "sess-1")
	require.NoError(t, err)
	require.Equal(t, target.ID, wg.ID)

	stored, err := f.sess.ActiveWorkgroup(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, target.ID, stored)

	require.Len(t, f.audits.events, 1)
	require.Equal(t, "context.switch", f.audits.events[0].Action)
}

func Test_Switch_DeniedForNonMember(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	target := f.addWorkgroup(t, "Target Shop", "target-shop", false, tenantstatus.Active)

	_, err := f.core.SwitchContext(ctx, uuid.New(), target.ID, f.sess, "sess-1")
	require.ErrorIs(t, err, workgroupbus.ErrAccessDenied)
}

func Test_Switch_DeniedForInactiveWorkgroup(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	userID := uuid.New()

	target := f.addWorkgroup(t, "Target Shop", "target-shop", false, tenantstatus.Suspended)
	f.addMembership(userID, target.ID, false, memberstatus.Active, time.Now())

	_, err := f.core.SwitchContext(ctx, userID, target.ID, f.sess, "sess-1")
	require.ErrorIs(t, err, workgroupbus.ErrAccessDenied)
}

func Test_Switch_PublicDefaultAlwaysAccessible(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	publicWG := f.addWorkgroup(t, "Public Shop", "public-shop", true, tenantstatus.Active)

	wg, err := f.core.SwitchContext(ctx, uuid.New(), publicWG.ID, f.sess, "sess-1")
	require.NoError(t, err)
	require.Equal(t, publicWG.ID, wg.ID)
}

func Test_Switch_UnknownWorkgroup(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.core.SwitchContext(ctx, uuid.New(), uuid.New(), f.sess, "sess-1")
	require.ErrorIs(t, err, workgroupbus.ErrNotFound)
}

func Test_Delete_PublicDefaultRefused(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	publicWG := f.addWorkgroup(t, "Public Shop", "public-shop", true, tenantstatus.Active)

	err := f.core.Delete(ctx, publicWG)
	require.ErrorIs(t, err, workgroupbus.ErrPublicDefault)
}

func Test_Create_DuplicateSlug(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.addWorkgroup(t, "Print Shop", "print-shop", false, tenantstatus.Active)

	_, err := f.core.Create(ctx, workgroupbus.NewWorkgroup{
		Name: name.MustParse("Print Shop Two"),
		Slug: slug.MustParse("print-shop"),
		Kind: tenantkind.Company,
	})
	require.ErrorIs(t, err, workgroupbus.ErrUniqueSlug)

	var dup sqldb.ErrDBDuplicatedEntry
	require.False(t, errors.As(err, &dup))
}
