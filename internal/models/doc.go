// Package models defines the translation records, saved items and the
// bounded collections the session keeps and persists.
package models
