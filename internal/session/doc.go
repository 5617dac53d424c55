// Package session owns the client/server commanding loop on top of the
// Form transfer protocol.
//
// Ownership boundary:
// - context shape validation handshake
// - request/ack authorization before each transfer
// - server accept loop, dispatch, and the mandatory reply
// - client Call round trip
// - session timing configuration
package session
