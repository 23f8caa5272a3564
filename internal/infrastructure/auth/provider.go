package auth

import (
	"context"
	"sync"

	"github.com/quickbill/backend/internal/domain/identity"
)

// SessionProvider tracks the currently signed-in operator and notifies
// listeners when the identity changes. It implements identity.Provider.
type SessionProvider struct {
	mu      sync.RWMutex
	current *identity.Operator
	changes chan identity.Change
}

// NewSessionProvider creates a provider with no signed-in operator.
func NewSessionProvider() *SessionProvider {
	return &SessionProvider{
		changes: make(chan identity.Change, 16),
	}
}

// Current returns the signed-in operator, if any.
func (p *SessionProvider) Current(_ context.Context) (identity.Operator, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return identity.Operator{}, false
	}
	return *p.current, true
}

// Changes returns the identity change notification channel.
func (p *SessionProvider) Changes() <-chan identity.Change {
	return p.changes
}

// SetCurrent records a successful login and emits a login change.
func (p *SessionProvider) SetCurrent(op identity.Operator) {
	p.mu.Lock()
	p.current = &op
	p.mu.Unlock()
	p.emit(identity.Change{Kind: identity.ChangeLogin, Operator: &op})
}

// Clear records a logout and emits a logout change.
func (p *SessionProvider) Clear() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	p.emit(identity.Change{Kind: identity.ChangeLogout})
}

// emit never blocks; a slow listener misses intermediate changes but the
// current state is always readable via Current.
func (p *SessionProvider) emit(change identity.Change) {
	select {
	case p.changes <- change:
	default:
	}
}

// Ensure SessionProvider implements identity.Provider
var _ identity.Provider = (*SessionProvider)(nil)
