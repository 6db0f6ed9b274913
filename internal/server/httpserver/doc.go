// Package httpserver provides the HTTP server for the QuMail key
// supply backend.
//
// It uses net/http with Go 1.22 method routing, a shared middleware
// chain, and a JSON envelope shared by every endpoint except /metrics.
package httpserver
