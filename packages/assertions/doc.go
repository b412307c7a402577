// Package assertions evaluates declarative assertions against HTTP responses.
//
// An assertion pairs a subject (status code, a named header, or a gjson path
// into the JSON body) with an operator and an expected value. Evaluation
// distinguishes a path that did not resolve from a value that resolved but
// did not match.
package assertions
