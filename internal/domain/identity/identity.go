package identity

import (
	"context"

	"github.com/google/uuid"
)

// Operator is the authenticated user context required to generate or
// save invoices. The billing core only cares whether one is present.
type Operator struct {
	ID   uuid.UUID
	Name string
}

// ChangeKind describes what happened to the current operator identity.
type ChangeKind string

const (
	ChangeLogin  ChangeKind = "login"
	ChangeLogout ChangeKind = "logout"
)

// Change is emitted whenever the current operator identity changes.
type Change struct {
	Kind     ChangeKind
	Operator *Operator // nil on logout
}

// Provider exposes the current operator identity, if any, and a
// notification channel for identity changes. Implemented by the auth
// infrastructure; consumed by the invoice lifecycle controller to reset
// any unsaved draft on login/logout.
type Provider interface {
	Current(ctx context.Context) (Operator, bool)
	Changes() <-chan Change
}
