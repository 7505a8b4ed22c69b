// Package cmd implements the command-line interface for mailclerk.
//
// This package provides the following commands:
//   - serve: Start the HTTP chat service and the periodic inbox checker
//   - mcp: Expose the assistant's tools over the Model Context Protocol on stdio
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
