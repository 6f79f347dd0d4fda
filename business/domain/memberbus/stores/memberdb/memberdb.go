// Package memberdb contains membership related CRUD functionality.
package memberdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/printdesk/printdesk/business/domain/memberbus"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/business/types/role"
	"github.com/printdesk/printdesk/foundation/logger"
)

// Store manages the set of APIs for membership database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (memberbus.Storer, error) {
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

// Upsert inserts a membership, collapsing to an update when the
// (user, workgroup) pair already has a row. The pair can never produce
// a duplicate.
func (s *Store) Upsert(ctx context.Context, m memberbus.Membership) error {
	const q = `
	INSERT INTO "public"."workgroup_membership"
		(user_id, workgroup_id, role, status, is_default, invited_by, joined_at, updated_at)
	VALUES
		(:user_id, :workgroup_id, :role, :status, :is_default, :invited_by, :joined_at, :updated_at)
	ON CONFLICT (user_id, workgroup_id) DO UPDATE SET
		role       = EXCLUDED.role,
		status     = EXCLUDED.status,
		is_default = EXCLUDED.is_default,
		updated_at = EXCLUDED.updated_at`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBMembership(m)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a membership row in the database.
func (s *Store) Update(ctx context.Context, m memberbus.Membership) error {
	const q = `
	UPDATE
		"public"."workgroup_membership"
	SET
		role       = :role,
		status     = :status,
		is_default = :is_default,
		updated_at = :updated_at
	WHERE
		user_id = :user_id AND workgroup_id = :workgroup_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBMembership(m)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes a membership from the database.
func (s *Store) Delete(ctx context.Context, m memberbus.Membership) error {
	const q = `
	DELETE FROM
		"public"."workgroup_membership"
	WHERE
		user_id = :user_id AND workgroup_id = :workgroup_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBMembership(m)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// ClearDefault removes the default flag from every membership the user holds.
func (s *Store) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	data := struct {
		UserID string `db:"user_id"`
	}{
		UserID: userID.String(),
	}

	const q = `
	UPDATE
		"public"."workgroup_membership"
	SET
		is_default = FALSE
	WHERE
		user_id = :user_id AND is_default = TRUE`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// SetUserDefault writes the denormalized default workgroup onto the user
// row. A nil workgroupID clears it.
func (s *Store) SetUserDefault(ctx context.Context, userID uuid.UUID, workgroupID *uuid.UUID) error {
	data := struct {
		UserID             string  `db:"user_id"`
		DefaultWorkgroupID *string `db:"default_workgroup_id"`
	}{
		UserID: userID.String(),
	}

	if workgroupID != nil {
		wgID := workgroupID.String()
		data.DefaultWorkgroupID = &wgID
	}

	const q = `
	UPDATE
		"public"."users"
	SET
		default_workgroup_id = :default_workgroup_id
	WHERE
		user_id = :user_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByKey gets the membership for the (user, workgroup) pair.
func (s *Store) QueryByKey(ctx context.Context, userID uuid.UUID, workgroupID uuid.UUID) (memberbus.Membership, error) {
	data := struct {
		UserID      string `db:"user_id"`
		WorkgroupID string `db:"workgroup_id"`
	}{
		UserID:      userID.String(),
		WorkgroupID: workgroupID.String(),
	}

	const q = `
	SELECT
		user_id, workgroup_id, role, status, is_default, invited_by, joined_at, updated_at
	FROM
		"public"."workgroup_membership"
	WHERE
		user_id = :user_id AND workgroup_id = :workgroup_id`

	var dbM membershipDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbM); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return memberbus.Membership{}, fmt.Errorf("db: %w", memberbus.ErrNotFound)
		}
		return memberbus.Membership{}, fmt.Errorf("db: %w", err)
	}

	return toBusMembership(dbM)
}

// QueryByUser returns every membership the user holds.
func (s *Store) QueryByUser(ctx context.Context, userID uuid.UUID) ([]memberbus.Membership, error) {
	data := struct {
		UserID string `db:"user_id"`
	}{
		UserID: userID.String(),
	}

	const q = `
	SELECT
		user_id, workgroup_id, role, status, is_default, invited_by, joined_at, updated_at
	FROM
		"public"."workgroup_membership"
	WHERE
		user_id = :user_id
	ORDER BY
		joined_at DESC`

	var dbMs []membershipDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbMs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusMemberships(dbMs)
}

// QueryByWorkgroup returns every membership inside the workgroup.
func (s *Store) QueryByWorkgroup(ctx context.Context, workgroupID uuid.UUID) ([]memberbus.Membership, error) {
	data := struct {
		WorkgroupID string `db:"workgroup_id"`
	}{
		WorkgroupID: workgroupID.String(),
	}

	const q = `
	SELECT
		user_id, workgroup_id, role, status, is_default, invited_by, joined_at, updated_at
	FROM
		"public"."workgroup_membership"
	WHERE
		workgroup_id = :workgroup_id
	ORDER BY
		joined_at ASC`

	var dbMs []membershipDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbMs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusMemberships(dbMs)
}

// ExistsRoleAnywhere reports whether the user holds an active membership
// with the given role in any workgroup.
func (s *Store) ExistsRoleAnywhere(ctx context.Context, userID uuid.UUID, r role.Role) (bool, error) {
	data := struct {
		UserID string `db:"user_id"`
		Role   string `db:"role"`
	}{
		UserID: userID.String(),
		Role:   r.String(),
	}

	const q = `
	SELECT
		TRUE AS found
	FROM
		"public"."workgroup_membership"
	WHERE
		user_id = :user_id AND role = :role AND status = 'ACTIVE'
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
