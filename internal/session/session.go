// Package session keeps per-session conversation context. Implementations
// live in subpackages and satisfy domain.SessionStore.
package session

import "errors"

// ErrEmptySessionID is returned when a store is addressed without an id.
var ErrEmptySessionID = errors.New("empty session id")
