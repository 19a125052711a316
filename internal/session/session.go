// Package session holds the signed-in tenant context of a console user. It
// is passed explicitly (or through a context.Context); nothing here is global.
package session

import (
	"context"
	"errors"
	"strings"
)

// ErrNoTenant is the user-facing state of a data page opened without a tenant.
var ErrNoTenant = errors.New("No tenant ID found in session")

type Session struct {
	TenantID string
	Email    string
}

func New(tenantID, email string) Session {
	return Session{
		TenantID: strings.TrimSpace(tenantID),
		Email:    strings.TrimSpace(email),
	}
}

// Require returns the tenant id, or ErrNoTenant when there is none.
func (s Session) Require() (string, error) {
	if s.TenantID == "" {
		return "", ErrNoTenant
	}
	return s.TenantID, nil
}

type ctxKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
