package catalogbus_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/catalogbus"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/business/types/catalogstatus"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/visibility"
	"github.com/printdesk/printdesk/foundation/logger"
	"github.com/stretchr/testify/require"
)

// fakeCatalogStore keeps categories in memory and mirrors the prefix
// rewrite the SQL store performs on subtree moves.
type fakeCatalogStore struct {
	categories map[uuid.UUID]catalogbus.Category
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{categories: make(map[uuid.UUID]catalogbus.Category)}
}

func (s *fakeCatalogStore) NewWithTx(tx sqldb.CommitRollbacker) (catalogbus.Storer, error) {
	return s, nil
}

func (s *fakeCatalogStore) Create(_ context.Context, cat catalogbus.Category) error {
	s.categories[cat.ID] = cat
	return nil
}

func (s *fakeCatalogStore) Update(_ context.Context, cat catalogbus.Category) error {
	s.categories[cat.ID] = cat
	return nil
}

func (s *fakeCatalogStore) DeleteSubtree(_ context.Context, cat catalogbus.Category) error {
	self := cat.ID.String()
	if cat.TreePath != "" {
		self = cat.TreePath + "/" + self
	}

	for id, c := range s.categories {
		if id == cat.ID || c.TreePath == self || strings.HasPrefix(c.TreePath, self+"/") {
			delete(s.categories, id)
		}
	}
	return nil
}

func (s *fakeCatalogStore) QueryByID(_ context.Context, workgroupID uuid.UUID, categoryID uuid.UUID) (catalogbus.Category, error) {
	cat, exists := s.categories[categoryID]
	if !exists || cat.WorkgroupID != workgroupID {
		return catalogbus.Category{}, catalogbus.ErrNotFound
	}
	return cat, nil
}

func (s *fakeCatalogStore) QueryByWorkgroup(_ context.Context, workgroupID uuid.UUID) ([]catalogbus.Category, error) {
	var cats []catalogbus.Category
	for _, cat := range s.categories {
		if cat.WorkgroupID == workgroupID {
			cats = append(cats, cat)
		}
	}
	return cats, nil
}

func (s *fakeCatalogStore) ExistsSlug(_ context.Context, workgroupID uuid.UUID, slugValue string, locale string) (bool, error) {
	for _, cat := range s.categories {
		if cat.WorkgroupID == workgroupID && cat.Slug.String() == slugValue && cat.Locale == locale {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeCatalogStore) UpdateSubtreePaths(_ context.Context, workgroupID uuid.UUID, oldPath string, newPath string) error {
	for id, cat := range s.categories {
		if cat.WorkgroupID != workgroupID {
			continue
		}
		if cat.TreePath == oldPath {
			cat.TreePath = newPath
			s.categories[id] = cat
			continue
		}
		if strings.HasPrefix(cat.TreePath, oldPath+"/") {
			cat.TreePath = newPath + cat.TreePath[len(oldPath):]
			s.categories[id] = cat
		}
	}
	return nil
}

// =============================================================================

func newTestCore(t *testing.T) (*catalogbus.Core, *fakeCatalogStore) {
	t.Helper()

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)
	store := newFakeCatalogStore()

	return catalogbus.NewCore(log, store), store
}

func create(t *testing.T, core *catalogbus.Core, workgroupID uuid.UUID, parentID *uuid.UUID, nameValue string) catalogbus.Category {
	t.Helper()

	cat, err := core.Create(context.Background(), catalogbus.NewCategory{
		WorkgroupID: workgroupID,
		ParentID:    parentID,
		Name:        name.MustParse(nameValue),
		Locale:      "en",
		Status:      catalogstatus.Active,
		Visibility:  visibility.Public,
	})
	require.NoError(t, err)

	return cat
}

// =============================================================================

func Test_Create_RootAndChildPaths(t *testing.T) {
	core, _ := newTestCore(t)
	wgID := uuid.New()

	root := create(t, core, wgID, nil, "Business Cards")
	require.Nil(t, root.ParentID)
	require.Equal(t, "", root.TreePath)
	require.Equal(t, "business-cards", root.Slug.String())

	child := create(t, core, wgID, &root.ID, "Premium")
	require.Equal(t, root.ID, *child.ParentID)
	require.Equal(t, root.ID.String(), child.TreePath)

	grandchild := create(t, core, wgID, &child.ID, "Gold Foil")
	require.Equal(t, root.ID.String()+"/"+child.ID.String(), grandchild.TreePath)
}

func Test_Create_SlugCollisionSuffix(t *testing.T) {
	core, _ := newTestCore(t)
	wgID := uuid.New()

	first := create(t, core, wgID, nil, "Posters")
	second := create(t, core, wgID, nil, "Posters")
	third := create(t, core, wgID, nil, "Posters")

	require.Equal(t, "posters", first.Slug.String())
	require.Equal(t, "posters-2", second.Slug.String())
	require.Equal(t, "posters-3", third.Slug.String())
}

func Test_Create_SameSlugDifferentLocale(t *testing.T) {
	core, _ := newTestCore(t)
	wgID := uuid.New()
	ctx := context.Background()

	first := create(t, core, wgID, nil, "Posters")

	second, err := core.Create(ctx, catalogbus.NewCategory{
		WorkgroupID: wgID,
		Name:        name.MustParse("Posters"),
		Locale:      "de",
		Status:      catalogstatus.Active,
		Visibility:  visibility.Public,
	})
	require.NoError(t, err)

	require.Equal(t, first.Slug.String(), second.Slug.String())
}

func Test_Create_MissingParentBecomesRoot(t *testing.T) {
	core, _ := newTestCore(t)
	wgID := uuid.New()

	ghost := uuid.New()
	cat := create(t, core, wgID, &ghost, "Orphan")

	require.Nil(t, cat.ParentID)
	require.Equal(t, "", cat.TreePath)
}

func Test_Move_RewritesDescendants(t *testing.T) {
	core, _ := newTestCore(t)
	wgID := uuid.New()
	ctx := context.Background()

	rootA := create(t, core, wgID, nil, "Apparel")
	rootB := create(t, core, wgID, nil, "Signage")
	mid := create(t, core, wgID, &rootA.ID, "Shirts")
	leaf := create(t, core, wgID, &mid.ID, "Long Sleeve")

	moved, err := core.Move(ctx, mid, &rootB.ID)
	require.NoError(t, err)
	require.Equal(t, rootB.ID, *moved.ParentID)
	require.Equal(t, rootB.ID.String(), moved.TreePath)

	got, err := core.QueryByID(ctx, wgID, leaf.ID)
	require.NoError(t, err)
	require.Equal(t, rootB.ID.String()+"/"+mid.ID.String(), got.TreePath)

	// The old parent keeps its own path untouched.
	gotA, err := core.QueryByID(ctx, wgID, rootA.ID)
	require.NoError(t, err)
	require.Equal(t, "", gotA.TreePath)
}

func Test_Move_ToRoot(t *testing.T) {
	core, _ := newTestCore(t)
	wgID := uuid.New()
	ctx := context.Background()

	root := create(t, core, wgID, nil, "Apparel")
	mid := create(t, core, wgID, &root.ID, "Shirts")
	leaf := create(t, core, wgID, &mid.ID, "Long Sleeve")

	moved, err := core.Move(ctx, mid, nil)
	require.NoError(t, err)
	require.Nil(t, moved.ParentID)
	require.Equal(t, "", moved.TreePath)

	got, err := core.QueryByID(ctx, wgID, leaf.ID)
	require.NoError(t, err)
	require.Equal(t, mid.ID.String(), got.TreePath)
}

func Test_Move_UnderItselfRejected(t *testing.T) {
	core, _ := newTestCore(t)
	wgID := uuid.New()
	ctx := context.Background()

	root := create(t, core, wgID, nil, "Apparel")
	child := create(t, core, wgID, &root.ID, "Shirts")

	_, err := core.Move(ctx, root, &root.ID)
	require.ErrorIs(t, err, catalogbus.ErrCyclicHierarchy)

	// The rejected move leaves every path untouched.
	got, err := core.QueryByID(ctx, wgID, root.ID)
	require.NoError(t, err)
	require.Nil(t, got.ParentID)
	require.Equal(t, "", got.TreePath)

	got, err = core.QueryByID(ctx, wgID, child.ID)
	require.NoError(t, err)
	require.Equal(t, root.ID.String(), got.TreePath)
}

func Test_Move_UnderDescendantRejected(t *testing.T) {
	core, _ := newTestCore(t)
	wgID := uuid.New()
	ctx := context.Background()

	root := create(t, core, wgID, nil, "Apparel")
	mid := create(t, core, wgID, &root.ID, "Shirts")
	leaf := create(t, core, wgID, &mid.ID, "Long Sleeve")

	_, err := core.Move(ctx, root, &leaf.ID)
	require.ErrorIs(t, err, catalogbus.ErrCyclicHierarchy)

	// Nothing in the subtree moved.
	for _, tc := range []struct {
		id   uuid.UUID
		path string
	}{
		{root.ID, ""},
		{mid.ID, root.ID.String()},
		{leaf.ID, root.ID.String() + "/" + mid.ID.String()},
	} {
		got, err := core.QueryByID(ctx, wgID, tc.id)
		require.NoError(t, err)
		require.Equal(t, tc.path, got.TreePath)
	}
}

func Test_Move_MissingParentBecomesRoot(t *testing.T) {
	core, _ := newTestCore(t)
	wgID := uuid.New()
	ctx := context.Background()

	root := create(t, core, wgID, nil, "Apparel")
	mid := create(t, core, wgID, &root.ID, "Shirts")

	ghost := uuid.New()
	moved, err := core.Move(ctx, mid, &ghost)
	require.NoError(t, err)
	require.Nil(t, moved.ParentID)
	require.Equal(t, "", moved.TreePath)
}

func Test_Delete_RemovesSubtree(t *testing.T) {
	core, store := newTestCore(t)
	wgID := uuid.New()
	ctx := context.Background()

	root := create(t, core, wgID, nil, "Apparel")
	mid := create(t, core, wgID, &root.ID, "Shirts")
	create(t, core, wgID, &mid.ID, "Long Sleeve")
	sibling := create(t, core, wgID, nil, "Signage")

	require.NoError(t, core.Delete(ctx, root))

	require.Len(t, store.categories, 1)

	got, err := core.QueryByID(ctx, wgID, sibling.ID)
	require.NoError(t, err)
	require.Equal(t, sibling.ID, got.ID)
}

func Test_QueryByID_ScopedToWorkgroup(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	cat := create(t, core, uuid.New(), nil, "Apparel")

	_, err := core.QueryByID(ctx, uuid.New(), cat.ID)
	require.ErrorIs(t, err, catalogbus.ErrNotFound)
}
