// Package auth owns the session lifecycle.
//
// Machine is the single writer of session state: resolution at boot, login,
// registration, logout, and forced invalidation all go through its
// transition methods, serialized so at most one authentication is in flight.
// Everything else observes value snapshots, either by polling Snapshot() or
// through Subscribe(). Guard implements the capability gate consulted by
// protected views.
package auth
