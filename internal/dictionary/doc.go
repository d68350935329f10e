// Package dictionary provides the local English to European Portuguese
// phrase table used when the remote translation service is unavailable.
package dictionary
