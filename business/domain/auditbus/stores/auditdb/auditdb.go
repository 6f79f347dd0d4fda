// Package auditdb contains audit event storage functionality.
package auditdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/printdesk/printdesk/business/domain/auditbus"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/foundation/logger"
)

// Store manages the set of APIs for audit database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (auditbus.Storer, error) {
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

// Create inserts a new audit event into the database.
func (s *Store) Create(ctx context.Context, evt auditbus.Event) error {
	dbEvt, err := toDBEvent(evt)
	if err != nil {
		return fmt.Errorf("todbevent: %w", err)
	}

	const q = `
	INSERT INTO "public"."audit_event"
		(id, actor_id, workgroup_id, action, entity, payload, created_at)
	VALUES
		(:id, :actor_id, :workgroup_id, :action, :entity, :payload, :created_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbEvt); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByWorkgroup returns the events recorded against the workgroup,
// most recent first.
func (s *Store) QueryByWorkgroup(ctx context.Context, workgroupID uuid.UUID) ([]auditbus.Event, error) {
	data := struct {
		WorkgroupID string `db:"workgroup_id"`
	}{
		WorkgroupID: workgroupID.String(),
	}

	const q = `
	SELECT
		id, actor_id, workgroup_id, action, entity, payload, created_at
	FROM
		"public"."audit_event"
	WHERE
		workgroup_id = :workgroup_id
	ORDER BY
		created_at DESC`

	var dbEvts []eventDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbEvts); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusEvents(dbEvts)
}
