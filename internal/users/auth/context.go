// Copyright (c) 2026 Gritsos. All rights reserved.

package auth

import (
	"context"

	"github.com/gritsos/gritsos-api/internal/platform/ctxkey"
)

// Identity is what a successful authentication attaches to the request.
type Identity struct {
	Principal Principal
	Method    Method
}

// WithIdentity returns a new context carrying identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, ctxkey.KeyIdentity, identity)
}

// IdentityFrom retrieves the identity stored by [WithIdentity].
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(ctxkey.KeyIdentity).(Identity)
	return identity, ok
}

// PrincipalFrom returns the authenticated principal, or the absent principal.
func PrincipalFrom(ctx context.Context) Principal {
	identity, _ := IdentityFrom(ctx)
	return identity.Principal
}
