// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (session.go, identity.go, job.go, application.go,
// credentials.go) hold shared types and cross-cutting interfaces. No
// implementation code - just contracts. Interfaces live on the consumer
// side to prevent circular imports.
package domain
