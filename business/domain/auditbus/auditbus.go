// Package auditbus provides business access to audit event recording.
package auditbus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/foundation/logger"
	"github.com/printdesk/printdesk/foundation/otel"
)

// Storer interface declares the behavior this package needs to persist
// and retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, evt Event) error
	QueryByWorkgroup(ctx context.Context, workgroupID uuid.UUID) ([]Event, error)
}

// Core manages the set of APIs for audit event access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs an audit core for api access.
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

// Record stores a new audit event. Failures are logged and swallowed so
// auditing never blocks the operation it records.
func (c *Core) Record(ctx context.Context, ne NewEvent) {
	ctx, span := otel.AddSpan(ctx, "business.auditbus.record")
	defer span.End()

	evt := newEvent(ne)

	if err := c.storer.Create(ctx, evt); err != nil {
		c.log.Error(ctx, "audit: record", "action", ne.Action, "err", err)
	}
}

// QueryByWorkgroup returns the events recorded against the workgroup.
func (c *Core) QueryByWorkgroup(ctx context.Context, workgroupID uuid.UUID) ([]Event, error) {
	ctx, span := otel.AddSpan(ctx, "business.auditbus.querybyworkgroup")
	defer span.End()

	evts, err := c.storer.QueryByWorkgroup(ctx, workgroupID)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return evts, nil
}
