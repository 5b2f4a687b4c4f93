// Package store persists the active server profile.
//
// The profile is kept as the JSON text the user imported, so that a
// profile written by a newer ShareX keeps its unknown keys on disk. Writes
// are atomic (temp file, then rename). A Watcher reloads the profile when
// the file changes on disk.
package store
