// Package env resolves {{variable}} references in suite files.
//
// References are looked up in captures from earlier requests, suite and
// environment variables, process environment ($NAME), and builtin functions.
package env
