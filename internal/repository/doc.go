// Package repository implements the entity repositories on top of the kv
// store contract.
//
// Every logical record is denormalized under a primary key plus secondary
// index keys; this package owns the invariant that the copies stay in sync.
// All mutations go through atomic check-then-write transactions; the store's
// version tokens are the only serialization discipline. Create paths fail on
// conflict, user mutations surface the conflict to the caller, and vote
// operations retry under a bounded budget.
package repository
