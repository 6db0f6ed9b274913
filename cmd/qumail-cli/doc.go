// Package main provides the entry point for qumail-cli.
//
// qumail-cli is the command-line tool for the QuMail key service:
// presence, pairwise sessions, the local key pool, and sealing or
// opening message envelopes against a running qumail-server.
package main
