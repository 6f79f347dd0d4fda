// Package tenantctx provides the request-scoped holder for the current
// workgroup. One Context value exists per inbound request; it is never shared
// between requests. Authorization and audit code read the resolved workgroup
// from here instead of from any ambient global.
package tenantctx

import (
	"errors"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
)

// ErrNotResolved is returned by Ensure when resolution has not run for this
// request. This indicates a programming error, not an authorization denial.
var ErrNotResolved = errors.New("workgroup context not resolved")

// ScopeFunc is notified every time the current workgroup changes. A zero
// uuid means the scope was cleared.
type ScopeFunc func(workgroupID uuid.UUID)

// Context holds the current workgroup for a single request. The zero state
// is Unresolved; Set and Clear are the only transitions.
type Context struct {
	current *workgroupbus.Workgroup
	scopers []ScopeFunc
}

// New constructs an unresolved Context. The given scope functions are
// invoked on every Set and Clear.
func New(scopers ...ScopeFunc) *Context {
	return &Context{
		scopers: scopers,
	}
}

// Set replaces the held workgroup and notifies the scope observers. Passing
// nil is equivalent to Clear.
func (c *Context) Set(wg *workgroupbus.Workgroup) {
	c.current = wg

	id := uuid.Nil
	if wg != nil {
		id = wg.ID
	}

	for _, scope := range c.scopers {
		scope(id)
	}
}

// Clear resets the context to the unresolved state.
func (c *Context) Clear() {
	c.Set(nil)
}

// Current returns the held workgroup, reporting whether one is set.
func (c *Context) Current() (workgroupbus.Workgroup, bool) {
	if c.current == nil {
		return workgroupbus.Workgroup{}, false
	}

	return *c.current, true
}

// CurrentID returns the held workgroup's id, or uuid.Nil when unresolved.
func (c *Context) CurrentID() uuid.UUID {
	if c.current == nil {
		return uuid.Nil
	}

	return c.current.ID
}

// Ensure returns the held workgroup or fails when resolution has not run.
// Code paths that must not execute without a resolved workgroup (audit
// tagging, scoped queries) call this instead of Current.
func (c *Context) Ensure() (workgroupbus.Workgroup, error) {
	if c.current == nil {
		return workgroupbus.Workgroup{}, ErrNotResolved
	}

	return *c.current, nil
}
