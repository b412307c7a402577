package suite

import (
	"github.com/restlabs/restcheck/packages/assertions"
	"github.com/restlabs/restcheck/packages/capture"
)

// Suite is one loaded test suite file.
type Suite struct {
	Name  string
	Path  string
	Vars  map[string]any
	Tests []*Test
}

// Test is a single request/assert case. Entities live for one test only;
// the only thing that outlives a test is a captured value threaded into a
// later request through the resolver.
type Test struct {
	Name       string
	Skip       string
	Request    *Request
	Assertions []*assertions.Assertion
	Captures   []*capture.Capture
}

// Request is the explicit request configuration: no fluent builder, just
// data. URL may contain {name} placeholders filled from PathParams.
type Request struct {
	Method      string
	URL         string
	PathParams  map[string]string
	QueryParams map[string]string
	Headers     map[string]string
	TimeoutMs   int
}
