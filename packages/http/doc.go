// Package http provides HTTP client functionality for restcheck test execution.
//
// It wraps the standard library's http package with additional features:
//   - URL templates with {name} path parameters
//   - Query parameter handling
//   - Configurable timeouts and redirect handling
//   - Transport errors reported distinctly from assertion failures
package http
