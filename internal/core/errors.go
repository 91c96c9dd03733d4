package core

import "errors"

// Sentinel errors forming the domain error taxonomy. Services and stores
// wrap these with context; the HTTP boundary matches them with errors.Is to
// pick a status code.
var (
	// ErrValidation marks malformed caller input: unparseable amounts,
	// bad dates, missing required fields.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateAccount marks a registration against a taken email.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrAuthFailure marks failed authentication. It deliberately carries no
	// detail: unknown email and wrong password must be indistinguishable.
	ErrAuthFailure = errors.New("authentication failed")

	// ErrNotFound marks an absent record, including records that exist but
	// belong to another account.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable marks infrastructure failure below the stores.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
