// Package service provides the domain services of the key supply
// backend.
//
// PresenceService tracks who is reachable; SessionService owns the
// pairwise session lifecycle and all key buffer operations. Services
// depend on storage and entropy through interfaces defined here, so the
// wiring in cmd decides the concrete implementations.
package service
