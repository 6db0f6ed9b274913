// Package command provides CLI command definitions for qumail-cli.
//
// It uses urfave/cli/v2 for command parsing. Commands talk to a
// running qumail-server over its HTTP API; send and open additionally
// seal and unseal payloads locally so no plaintext or raw key material
// crosses the wire twice.
package command
