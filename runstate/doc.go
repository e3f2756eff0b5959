// Package runstate houses storage for paused run snapshots. A run that
// pauses for tool approval externalizes its full state as a
// core.PausedRunState; stores in this package keep such snapshots between
// the pause and the eventual approval, which may happen much later or in a
// different process.
//
// Add additional backends (Redis, Postgres, etc.) in sub-packages without
// changing any calling code; only the wiring layer decides which
// implementation to instantiate.
package runstate
