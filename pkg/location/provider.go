package location

import "errors"

// ErrPermissionDenied is returned by Authorize when access to the underlying
// position source is refused (missing API key, unreadable GPS device). A
// watcher that sees it must not start its sampling loop.
var ErrPermissionDenied = errors.New("location permission denied")

// Provider interface defines the methods for location providers.
type Provider interface {
	// Authorize verifies access to the position source. Called once at
	// watcher start, never re-checked mid-run.
	Authorize() error
	GetLocation() (Location, error)
	Close() error
}
