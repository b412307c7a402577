// Package suite defines the YAML test suite format and its loader.
//
// A suite declares named tests, each with an explicit request specification
// (method, URL template, path parameters, query parameters), a list of
// assertions, and optional captures that extract response values for later
// requests.
package suite
