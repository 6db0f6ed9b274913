// Package domain defines the core domain models for the QuMail key-supply
// subsystem.
//
// Domain models are pure value objects and entities without any IO
// dependencies or framework coupling: presence records, pairwise key
// sessions and their append-only key buffers, local one-time keys, and
// the coded error taxonomy shared by every layer above.
package domain
