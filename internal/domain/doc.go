// Package domain defines the core entity types and repository contracts.
//
// This package contains concept-oriented files (item.go, comment.go, vote.go,
// user.go, errors.go) with shared types and cross-cutting interfaces. No
// implementation code - just contracts. Interfaces live on the consumer side
// to prevent circular imports.
package domain
