package domain

import "strings"

// Principal identifies an external caller or fund recipient. Values are
// opaque identifiers assigned outside the ledger; the empty string is not a
// valid principal.
type Principal string

// Valid reports whether the principal is usable.
func (p Principal) Valid() bool {
	return strings.TrimSpace(string(p)) != ""
}

// Authorized reports whether caller may act as the required principal.
// Access control is a plain identity check, kept separate from ledger logic
// so it can be exercised on its own.
func Authorized(caller, required Principal) bool {
	return caller.Valid() && caller == required
}
