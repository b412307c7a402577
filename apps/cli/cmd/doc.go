// Package cmd implements the restcheck CLI commands using Cobra.
//
// Available commands:
//   - run: Execute API checks from suite files
//   - validate: Check suite file syntax without executing
//   - list: Display all checks defined in files
//   - mock: Serve canned responses from YAML route fixtures
//   - history: Show run summaries recorded with --record
//   - version: Show restcheck version information
//
// The CLI supports flags for filtering, output formatting, request
// pacing, and watch mode for development workflows.
package cmd
