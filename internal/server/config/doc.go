// Package config defines the server configuration structure.
//
// Values are resolved defaults < config file < environment, loaded by
// the confloader package.
package config
