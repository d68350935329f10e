// Package resolver turns source text into a translation outcome. It prefers
// the remote translator, falls back to the local phrase table, debounces
// automatic attempts and tags every attempt with a sequence number.
package resolver
