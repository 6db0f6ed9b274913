// Package memory provides in-memory storage for QuMail's key supply
// backend.
//
// It implements the service-layer repository interfaces using
// concurrent-safe data structures with sharded locking. Sessions and
// presence records live only in memory; restart clears all state.
package memory
