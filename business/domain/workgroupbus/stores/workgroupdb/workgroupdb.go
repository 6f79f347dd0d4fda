// Package workgroupdb contains workgroup related CRUD functionality.
package workgroupdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/sdk/order"
	"github.com/printdesk/printdesk/business/sdk/page"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/foundation/logger"
)

// Store manages the set of APIs for workgroup database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (workgroupbus.Storer, error) {
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

// Create inserts a new workgroup into the database.
func (s *Store) Create(ctx context.Context, wg workgroupbus.Workgroup) error {
	dbWg, err := toDBWorkgroup(wg)
	if err != nil {
		return fmt.Errorf("todbworkgroup: %w", err)
	}

	const q = `
	INSERT INTO "public"."workgroup"
		(id, name, slug, kind, status, is_public_default, settings, created_at, updated_at)
	VALUES
		(:id, :name, :slug, :kind, :status, :is_public_default, :settings, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbWg); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a workgroup document in the database.
func (s *Store) Update(ctx context.Context, wg workgroupbus.Workgroup) error {
	dbWg, err := toDBWorkgroup(wg)
	if err != nil {
		return fmt.Errorf("todbworkgroup: %w", err)
	}

	const q = `
	UPDATE
		"public"."workgroup"
	SET
		name       = :name,
		slug       = :slug,
		status     = :status,
		settings   = :settings,
		updated_at = :updated_at
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbWg); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes a workgroup from the database.
func (s *Store) Delete(ctx context.Context, wg workgroupbus.Workgroup) error {
	data := struct {
		ID string `db:"id"`
	}{
		ID: wg.ID.String(),
	}

	const q = `
	DELETE FROM
		"public"."workgroup"
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing workgroups from the database.
func (s *Store) Query(ctx context.Context, orderBy order.By, page page.Page) ([]workgroupbus.Workgroup, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		id, name, slug, kind, status, is_public_default, settings, created_at, updated_at
	FROM
		"public"."workgroup"`

	buf := bytes.NewBufferString(q)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbWgs []workgroupDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbWgs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusWorkgroups(dbWgs)
}

// Count returns the total number of workgroups in the DB.
func (s *Store) Count(ctx context.Context) (int, error) {
	const q = `
	SELECT
		count(1)
	FROM
		"public"."workgroup"`

	var count struct {
		Count int `db:"count"`
	}

	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, map[string]any{}, &count); err != nil {
		return 0, fmt.Errorf("db: %w", err)
	}

	return count.Count, nil
}

// QueryByID gets the specified workgroup from the database.
func (s *Store) QueryByID(ctx context.Context, workgroupID uuid.UUID) (workgroupbus.Workgroup, error) {
	data := struct {
		ID string `db:"id"`
	}{
		ID: workgroupID.String(),
	}

	const q = `
	SELECT
		id, name, slug, kind, status, is_public_default, settings, created_at, updated_at
	FROM
		"public"."workgroup"
	WHERE
		id = :id`

	var dbWg workgroupDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbWg); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return workgroupbus.Workgroup{}, fmt.Errorf("db: %w", workgroupbus.ErrNotFound)
		}
		return workgroupbus.Workgroup{}, fmt.Errorf("db: %w", err)
	}

	return toBusWorkgroup(dbWg)
}

// QueryBySlug gets the workgroup with the specified slug from the database.
func (s *Store) QueryBySlug(ctx context.Context, slug string) (workgroupbus.Workgroup, error) {
	data := struct {
		Slug string `db:"slug"`
	}{
		Slug: slug,
	}

	const q = `
	SELECT
		id, name, slug, kind, status, is_public_default, settings, created_at, updated_at
	FROM
		"public"."workgroup"
	WHERE
		slug = :slug`

	var dbWg workgroupDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbWg); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return workgroupbus.Workgroup{}, fmt.Errorf("db: %w", workgroupbus.ErrNotFound)
		}
		return workgroupbus.Workgroup{}, fmt.Errorf("db: %w", err)
	}

	return toBusWorkgroup(dbWg)
}

// QueryPublicDefault gets the workgroup flagged as the public default.
// A partial unique index guarantees at most one row carries the flag.
func (s *Store) QueryPublicDefault(ctx context.Context) (workgroupbus.Workgroup, error) {
	const q = `
	SELECT
		id, name, slug, kind, status, is_public_default, settings, created_at, updated_at
	FROM
		"public"."workgroup"
	WHERE
		is_public_default = TRUE`

	var dbWg workgroupDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, map[string]any{}, &dbWg); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return workgroupbus.Workgroup{}, fmt.Errorf("db: %w", workgroupbus.ErrNotFound)
		}
		return workgroupbus.Workgroup{}, fmt.Errorf("db: %w", err)
	}

	return toBusWorkgroup(dbWg)
}
