// Package handler provides the HTTP request handlers for QuMail.
//
// This package implements the API endpoints for presence tracking,
// key session management, the local key pool and administrative
// operations. All responses share a JSON envelope except /metrics,
// which is mounted by the router and serves the Prometheus
// exposition format.
package handler
