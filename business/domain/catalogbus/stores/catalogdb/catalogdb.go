// Package catalogdb contains category related CRUD functionality.
package catalogdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/printdesk/printdesk/business/domain/catalogbus"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/foundation/logger"
)

// Store manages the set of APIs for category database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (catalogbus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Create inserts a new category into the database.
func (s *Store) Create(ctx context.Context, cat catalogbus.Category) error {
	const q = `
	INSERT INTO "public"."category"
		(id, workgroup_id, parent_id, name, slug, locale, tree_path, status, visibility, sort_order, created_at, updated_at)
	VALUES
		(:id, :workgroup_id, :parent_id, :name, :slug, :locale, :tree_path, :status, :visibility, :sort_order, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBCategory(cat)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a category document in the database.
func (s *Store) Update(ctx context.Context, cat catalogbus.Category) error {
	const q = `
	UPDATE
		"public"."category"
	SET
		parent_id  = :parent_id,
		name       = :name,
		slug       = :slug,
		tree_path  = :tree_path,
		status     = :status,
		visibility = :visibility,
		sort_order = :sort_order,
		updated_at = :updated_at
	WHERE
		workgroup_id = :workgroup_id AND id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBCategory(cat)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// DeleteSubtree removes a category and every descendant in one statement.
func (s *Store) DeleteSubtree(ctx context.Context, cat catalogbus.Category) error {
	data := struct {
		ID          string `db:"id"`
		WorkgroupID string `db:"workgroup_id"`
		SelfPath    string `db:"self_path"`
	}{
		ID:          cat.ID.String(),
		WorkgroupID: cat.WorkgroupID.String(),
		SelfPath:    selfPath(cat),
	}

	const q = `
	DELETE FROM
		"public"."category"
	WHERE
		workgroup_id = :workgroup_id AND
		(id = :id OR tree_path = :self_path OR tree_path LIKE :self_path || '/%')`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified category from the database.
func (s *Store) QueryByID(ctx context.Context, workgroupID uuid.UUID, categoryID uuid.UUID) (catalogbus.Category, error) {
	data := struct {
		ID          string `db:"id"`
		WorkgroupID string `db:"workgroup_id"`
	}{
		ID:          categoryID.String(),
		WorkgroupID: workgroupID.String(),
	}

	const q = `
	SELECT
		id, workgroup_id, parent_id, name, slug, locale, tree_path, status, visibility, sort_order, created_at, updated_at
	FROM
		"public"."category"
	WHERE
		workgroup_id = :workgroup_id AND id = :id`

	var dbCat categoryDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbCat); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return catalogbus.Category{}, fmt.Errorf("db: %w", catalogbus.ErrNotFound)
		}
		return catalogbus.Category{}, fmt.Errorf("db: %w", err)
	}

	return toBusCategory(dbCat)
}

// QueryByWorkgroup returns the categories of the workgroup ordered so
// parents precede children.
func (s *Store) QueryByWorkgroup(ctx context.Context, workgroupID uuid.UUID) ([]catalogbus.Category, error) {
	data := struct {
		WorkgroupID string `db:"workgroup_id"`
	}{
		WorkgroupID: workgroupID.String(),
	}

	const q = `
	SELECT
		id, workgroup_id, parent_id, name, slug, locale, tree_path, status, visibility, sort_order, created_at, updated_at
	FROM
		"public"."category"
	WHERE
		workgroup_id = :workgroup_id
	ORDER BY
		tree_path ASC, sort_order ASC, name ASC`

	var dbCats []categoryDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbCats); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusCategories(dbCats)
}

// ExistsSlug reports whether the (slug, locale) pair is taken inside
// the workgroup.
func (s *Store) ExistsSlug(ctx context.Context, workgroupID uuid.UUID, slug string, locale string) (bool, error) {
	data := struct {
		WorkgroupID string `db:"workgroup_id"`
		Slug        string `db:"slug"`
		Locale      string `db:"locale"`
	}{
		WorkgroupID: workgroupID.String(),
		Slug:        slug,
		Locale:      locale,
	}

	const q = `
	SELECT
		TRUE AS found
	FROM
		"public"."category"
	WHERE
		workgroup_id = :workgroup_id AND slug = :slug AND locale = :locale
	LIMIT 1`

	var result struct {
		Found bool `db:"found"`
	}

	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &result); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("db: %w", err)
	}

	return true, nil
}

// UpdateSubtreePaths rewrites the tree path prefix of every descendant
// of a moved node in a single statement.
func (s *Store) UpdateSubtreePaths(ctx context.Context, workgroupID uuid.UUID, oldPath string, newPath string) error {
	data := struct {
		WorkgroupID string `db:"workgroup_id"`
		OldPath     string `db:"old_path"`
		NewPath     string `db:"new_path"`
	}{
		WorkgroupID: workgroupID.String(),
		OldPath:     oldPath,
		NewPath:     newPath,
	}

	const q = `
	UPDATE
		"public"."category"
	SET
		tree_path = :new_path || SUBSTRING(tree_path FROM LENGTH(:old_path) + 1)
	WHERE
		workgroup_id = :workgroup_id AND
		(tree_path = :old_path OR tree_path LIKE :old_path || '/%')`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

func selfPath(cat catalogbus.Category) string {
	if cat.TreePath == "" {
		return cat.ID.String()
	}
	return cat.TreePath + "/" + cat.ID.String()
}
