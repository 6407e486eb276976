// Package config holds the settings of the quickstart server.
//
// Settings are read from an optional TOML file. The serve command layers
// environment variables and command-line flags on top of it.
package config
