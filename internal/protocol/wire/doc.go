// Package wire owns the Form transfer state machines and the byte-stream
// transport boundary.
//
// Ownership boundary:
// - Transport contract and the net.Conn adapter
// - Transmitter: title/body/separator/appendix send with per-step acks
// - Receiver: the symmetric receive side
// - wire error taxonomy
package wire
