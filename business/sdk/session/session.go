// Package session provides the per-session storage used by workgroup context
// resolution. The active workgroup chosen for a session is written back here
// so later requests in the same session resolve to the same choice until an
// explicit switch.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoValue is returned when the session holds no stored workgroup.
var ErrNoValue = errors.New("no session value")

// Store defines the behavior required to persist the active workgroup
// choice for a session.
type Store interface {
	ActiveWorkgroup(ctx context.Context, sessionID string) (uuid.UUID, error)
	SetActiveWorkgroup(ctx context.Context, sessionID string, workgroupID uuid.UUID) error
}
