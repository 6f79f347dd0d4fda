// Package catalogbus provides business access to the product category
// tree. Every node carries a materialized path of ancestor IDs so
// subtree reads never recurse, at the cost of a bulk rewrite whenever
// a node moves.
package catalogbus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/business/types/slug"
	"github.com/printdesk/printdesk/foundation/logger"
	"github.com/printdesk/printdesk/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound        = errors.New("category not found")
	ErrCyclicHierarchy = errors.New("category cannot be moved under its own subtree")
	ErrSlugExhausted   = errors.New("could not derive a unique slug")
)

// Storer interface declares the behavior this package needs to persist
// and retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, cat Category) error
	Update(ctx context.Context, cat Category) error
	DeleteSubtree(ctx context.Context, cat Category) error
	QueryByID(ctx context.Context, workgroupID uuid.UUID, categoryID uuid.UUID) (Category, error)
	QueryByWorkgroup(ctx context.Context, workgroupID uuid.UUID) ([]Category, error)
	ExistsSlug(ctx context.Context, workgroupID uuid.UUID, slug string, locale string) (bool, error)
	UpdateSubtreePaths(ctx context.Context, workgroupID uuid.UUID, oldPath string, newPath string) error
}

// Core manages the set of APIs for category access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs a catalog core for api access.
func NewCore(log *logger.Logger, storer Storer) *Core {
	return &Core{
		log:    log,
		storer: storer,
	}
}

// NewWithTx constructs a new core value that will use the
// specified transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	core := Core{
		log:    c.log,
		storer: storer,
	}

	return &core, nil
}

// Create adds a new category to the workgroup's tree. The slug is
// derived from the name and suffixed with -2, -3 and so on until it is
// unique for the (slug, locale) pair inside the workgroup. A parent
// that no longer exists demotes the node to a root instead of failing.
func (c *Core) Create(ctx context.Context, nc NewCategory) (Category, error) {
	ctx, span := otel.AddSpan(ctx, "business.catalogbus.create")
	defer span.End()

	slg, err := c.uniqueSlug(ctx, nc.WorkgroupID, nc.Name.String(), nc.Locale)
	if err != nil {
		return Category{}, err
	}

	parentID, treePath, err := c.placement(ctx, nc.WorkgroupID, nc.ParentID)
	if err != nil {
		return Category{}, err
	}

	now := time.Now()

	cat := Category{
		ID:          uuid.New(),
		WorkgroupID: nc.WorkgroupID,
		ParentID:    parentID,
		Name:        nc.Name,
		Slug:        slg,
		Locale:      nc.Locale,
		TreePath:    treePath,
		Status:      nc.Status,
		Visibility:  nc.Visibility,
		SortOrder:   nc.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storer.Create(ctx, cat); err != nil {
		return Category{}, fmt.Errorf("create: %w", err)
	}

	return cat, nil
}

// Update modifies a category in place. The tree position is untouched.
func (c *Core) Update(ctx context.Context, cat Category, uc UpdateCategory) (Category, error) {
	ctx, span := otel.AddSpan(ctx, "business.catalogbus.update")
	defer span.End()

	if uc.Name != nil {
		cat.Name = *uc.Name
	}

	if uc.Status != nil {
		cat.Status = *uc.Status
	}

	if uc.Visibility != nil {
		cat.Visibility = *uc.Visibility
	}

	if uc.SortOrder != nil {
		cat.SortOrder = *uc.SortOrder
	}

	cat.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, cat); err != nil {
		return Category{}, fmt.Errorf("update: %w", err)
	}

	return cat, nil
}

// Move re-parents a category. A nil parentID makes the node a root.
// Moving a node under itself or any of its descendants is rejected
// with ErrCyclicHierarchy. Every descendant's tree path is rewritten
// in one statement.
func (c *Core) Move(ctx context.Context, cat Category, parentID *uuid.UUID) (Category, error) {
	ctx, span := otel.AddSpan(ctx, "business.catalogbus.move")
	defer span.End()

	oldPath := selfPath(cat)

	newParentID, newTreePath, err := c.movePlacement(ctx, cat, parentID)
	if err != nil {
		return Category{}, err
	}

	cat.ParentID = newParentID
	cat.TreePath = newTreePath
	cat.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, cat); err != nil {
		return Category{}, fmt.Errorf("update: %w", err)
	}

	if newPath := selfPath(cat); newPath != oldPath {
		if err := c.storer.UpdateSubtreePaths(ctx, cat.WorkgroupID, oldPath, newPath); err != nil {
			return Category{}, fmt.Errorf("rewrite subtree: %w", err)
		}
	}

	return cat, nil
}

// Delete removes a category and its entire subtree.
func (c *Core) Delete(ctx context.Context, cat Category) error {
	ctx, span := otel.AddSpan(ctx, "business.catalogbus.delete")
	defer span.End()

	if err := c.storer.DeleteSubtree(ctx, cat); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// QueryByID finds the category by ID inside the workgroup.
func (c *Core) QueryByID(ctx context.Context, workgroupID uuid.UUID, categoryID uuid.UUID) (Category, error) {
	ctx, span := otel.AddSpan(ctx, "business.catalogbus.querybyid")
	defer span.End()

	cat, err := c.storer.QueryByID(ctx, workgroupID, categoryID)
	if err != nil {
		return Category{}, fmt.Errorf("query: categoryID[%s]: %w", categoryID, err)
	}

	return cat, nil
}

// QueryByWorkgroup returns the workgroup's categories ordered by tree
// path so parents always precede their children.
func (c *Core) QueryByWorkgroup(ctx context.Context, workgroupID uuid.UUID) ([]Category, error) {
	ctx, span := otel.AddSpan(ctx, "business.catalogbus.querybyworkgroup")
	defer span.End()

	cats, err := c.storer.QueryByWorkgroup(ctx, workgroupID)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return cats, nil
}

// placement resolves where a new node lands. A missing parent is
// treated as no parent.
func (c *Core) placement(ctx context.Context, workgroupID uuid.UUID, parentID *uuid.UUID) (*uuid.UUID, string, error) {
	if parentID == nil {
		return nil, "", nil
	}

	parent, err := c.storer.QueryByID(ctx, workgroupID, *parentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("query parent: %w", err)
	}

	id := parent.ID
	return &id, selfPath(parent), nil
}

// movePlacement resolves the target position for a move, rejecting any
// parent that sits inside the moving node's own subtree.
func (c *Core) movePlacement(ctx context.Context, cat Category, parentID *uuid.UUID) (*uuid.UUID, string, error) {
	if parentID == nil {
		return nil, "", nil
	}

	if *parentID == cat.ID {
		return nil, "", ErrCyclicHierarchy
	}

	parent, err := c.storer.QueryByID(ctx, cat.WorkgroupID, *parentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("query parent: %w", err)
	}

	if inSubtree(parent, cat) {
		return nil, "", ErrCyclicHierarchy
	}

	id := parent.ID
	return &id, selfPath(parent), nil
}

// uniqueSlug derives a slug from the name and probes with numeric
// suffixes until a free one is found for the (slug, locale) pair.
func (c *Core) uniqueSlug(ctx context.Context, workgroupID uuid.UUID, nameValue string, locale string) (slug.Slug, error) {
	const maxAttempts = 50

	base, err := slug.FromName(nameValue)
	if err != nil {
		return slug.Slug{}, fmt.Errorf("derive slug: %w", err)
	}

	candidate := base
	for attempt := 2; ; attempt++ {
		exists, err := c.storer.ExistsSlug(ctx, workgroupID, candidate.String(), locale)
		if err != nil {
			return slug.Slug{}, fmt.Errorf("probe slug: %w", err)
		}

		if !exists {
			return candidate, nil
		}

		if attempt > maxAttempts {
			return slug.Slug{}, ErrSlugExhausted
		}

		candidate = base.WithSuffix(attempt)
	}
}

// selfPath is the tree path a node's children carry.
func selfPath(cat Category) string {
	if cat.TreePath == "" {
		return cat.ID.String()
	}
	return cat.TreePath + "/" + cat.ID.String()
}

// inSubtree reports whether candidate sits at or below node.
func inSubtree(candidate Category, node Category) bool {
	path := selfPath(node)
	candidatePath := selfPath(candidate)

	return candidatePath == path || strings.HasPrefix(candidatePath, path+"/")
}
