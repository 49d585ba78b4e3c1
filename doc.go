// Package conventus defines conversion contracts between an ordered sequence
// of parts and the composite value they form.
//
// Ownership boundary:
// - Composer: a composite type consumes a prefix of a caller-owned []P
// - Decomposer: a part type turns one composite into a fresh []P
// - ComposeInto / DecomposeInto: derived adapters, pure forwarding
// - Failure: Incomplete (retry with more parts) vs Error(cause) (permanent)
//
// Contract methods are invoked on the zero value of their receiver type, so an
// implementation must not read receiver state.
package conventus
