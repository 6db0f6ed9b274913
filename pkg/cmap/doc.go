// Package cmap provides a concurrent-safe sharded map keyed by string.
//
// Sharding keeps lock contention low when many independent entries are
// touched concurrently, which is the access pattern of the session and
// presence stores: operations on unrelated keys never share a lock.
package cmap
