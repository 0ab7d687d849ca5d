// Package repository implements the MySQL-backed stores behind the
// exchange service: postings, the event catalog, profiles, the trade
// ledger, chat and the auth tables.  Sentinel errors defined here let
// handlers distinguish failure scenarios; "row does not exist" cases
// are reported via exchange.ErrNotFound so the service layer and the
// in-memory fakes behave identically.
package repository

import "errors"

// ErrConflict is returned when a write cannot proceed because of
// conflicting existing state, such as creating an event whose label
// is already taken. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")
