// Package capture extracts values from HTTP responses for reuse in later
// requests, rather than asserting on them.
package capture
