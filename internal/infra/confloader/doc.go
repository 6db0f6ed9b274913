// Package confloader loads server configuration.
//
// Sources are merged in priority order: struct defaults, an optional
// .env file, an optional YAML config file, then QUMAIL_* environment
// variables. A file watcher supports live reload of the log level.
package confloader
