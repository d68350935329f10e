// Package translation provides the remote English to European Portuguese
// translation clients. MyMemory is the default endpoint; OpenAI and Gemini
// can be configured instead. Every client is wrapped in a circuit breaker.
package translation
