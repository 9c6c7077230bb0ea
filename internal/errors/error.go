// Package errors provides the error taxonomy shared by the document store and its HTTP adapters.
package errors

import "errors"

// ErrInvalidID is returned when a caller supplies a malformed identifier or sets one on a new document.
var ErrInvalidID = errors.New("invalid identifier")

// ErrNotFound is returned when no document matches the requested identifier.
var ErrNotFound = errors.New("document not found")

var ErrEncode = errors.New("failed to encode document")
var ErrDecode = errors.New("failed to decode document")

// ErrStore wraps every transport, driver and timeout failure of a store round-trip.
var ErrStore = errors.New("store operation failed")
