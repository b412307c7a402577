// Package runner executes test suites: it resolves variables, builds and
// sends each request, evaluates assertions, and threads captured values into
// later requests. Execution is sequential and synchronous; each test is a
// single-shot request.
package runner
