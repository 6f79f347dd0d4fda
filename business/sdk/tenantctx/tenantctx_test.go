package tenantctx_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/sdk/tenantctx"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/slug"
	"github.com/printdesk/printdesk/business/types/tenantkind"
	"github.com/printdesk/printdesk/business/types/tenantstatus"
	"github.com/stretchr/testify/require"
)

func testWorkgroup(t *testing.T) workgroupbus.Workgroup {
	t.Helper()

	return workgroupbus.Workgroup{
		ID:     uuid.New(),
		Name:   name.MustParse("Print Shop"),
		Slug:   slug.MustParse("print-shop"),
		Kind:   tenantkind.Company,
		Status: tenantstatus.Active,
	}
}

func Test_Unresolved(t *testing.T) {
	tc := tenantctx.New()

	_, ok := tc.Current()
	require.False(t, ok)

	require.Equal(t, uuid.Nil, tc.CurrentID())

	_, err := tc.Ensure()
	require.ErrorIs(t, err, tenantctx.ErrNotResolved)
}

func Test_SetAndClear(t *testing.T) {
	tc := tenantctx.New()
	wg := testWorkgroup(t)

	tc.Set(&wg)

	got, ok := tc.Current()
	require.True(t, ok)
	require.Equal(t, wg.ID, got.ID)
	require.Equal(t, wg.ID, tc.CurrentID())

	got, err := tc.Ensure()
	require.NoError(t, err)
	require.Equal(t, wg.ID, got.ID)

	tc.Clear()

	_, ok = tc.Current()
	require.False(t, ok)

	_, err = tc.Ensure()
	require.ErrorIs(t, err, tenantctx.ErrNotResolved)
}

func Test_SetNilClears(t *testing.T) {
	tc := tenantctx.New()
	wg := testWorkgroup(t)

	tc.Set(&wg)
	tc.Set(nil)

	_, ok := tc.Current()
	require.False(t, ok)
}

func Test_ScopeObservers(t *testing.T) {
	var seen []uuid.UUID

	tc := tenantctx.New(func(workgroupID uuid.UUID) {
		seen = append(seen, workgroupID)
	})

	wg := testWorkgroup(t)

	tc.Set(&wg)
	tc.Clear()

	require.Equal(t, []uuid.UUID{wg.ID, uuid.Nil}, seen)
}
