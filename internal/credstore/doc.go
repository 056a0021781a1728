// Package credstore implements the credential store capability.
//
// Three backends: file (default, JSON on disk with optional encryption at
// rest), redis (shared across restarts and instances), and memory (tests
// and ephemeral runs). All backends enforce the pair invariant: both tokens
// persisted or neither. A store that cannot be read reports "absent", never
// a fatal error.
package credstore
