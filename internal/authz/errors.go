package authz

import "errors"

var (
	// ErrTenantNotFound marks a request for an unknown tenant. Surfaced as a
	// not-found outcome, never as a denial.
	ErrTenantNotFound = errors.New("authz: tenant not found")

	// ErrEntityNotFound marks a request for an entity without authorization
	// metadata in the tenant.
	ErrEntityNotFound = errors.New("authz: entity not found")

	// ErrUnauthorized marks a denied operation.
	ErrUnauthorized = errors.New("authz: unauthorized")
)
