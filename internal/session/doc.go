// Package session holds the state of one translation session: current
// input and output, loading and error flags, preferences, and the history
// and saved collections, which it persists on every change.
package session
