// Package output formats run results for humans (console) and machines
// (JSON, JUnit XML).
package output
