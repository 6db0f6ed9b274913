// Package main provides the entry point for qumail-server.
//
// qumail-server is the key supply service for QuMail. It tracks user
// presence, manages pairwise key sessions with shared append-only
// buffers, and serves a local key pool, drawing entropy from a quantum
// HTTP source with a CSPRNG fallback.
package main
