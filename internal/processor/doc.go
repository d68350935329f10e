// Package processor contains the application logic of bomdia. It wires the
// translator, phrase table, persistence, speech and clipboard into a session
// and drives it in single, batch and interactive console mode.
package processor
