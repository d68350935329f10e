// Package storage implements the key-value persistence used for the
// history and saved collections: JSON files, SQLite or memory.
package storage
