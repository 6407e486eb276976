// Package cmd implements the command-line interface for quickstart.
//
// This package provides the following commands:
//   - serve: Start the web application
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
