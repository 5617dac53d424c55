// Package commanding owns the RPC projections of the Form envelope.
//
// Ownership boundary:
// - CommandForm / ReturnForm / ErrorForm construction and reverse parsing
// - spec-line (key:value) body discipline
// - title dispatch of received Forms
// - the command registry and its execution entry point
// - remote error representation and the error-name registry
package commanding
