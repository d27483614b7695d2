// Package ownership is the single authorization rule of the service: a
// principal may only touch resources owned by its own user record. Lookup
// always precedes the guard, so a missing resource surfaces as not_found and
// an existing resource owned by someone else as forbidden.
package ownership

import (
	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
)

// RequireOwner fails with a forbidden error when the principal does not own
// the resource.
func RequireOwner(principal, resourceOwner domain.UserID) error {
	if principal.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if principal != resourceOwner {
		return dErrors.New(dErrors.CodeForbidden, "principal does not own this resource")
	}
	return nil
}

// RequireSelf is RequireOwner specialized for user records, where the
// resource owner is the user itself.
func RequireSelf(principal, target domain.UserID) error {
	return RequireOwner(principal, target)
}
