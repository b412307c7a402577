package suite

import (
	"fmt"
	"os"
	"strings"

	"github.com/restlabs/restcheck/packages/assertions"
	"github.com/restlabs/restcheck/packages/capture"
	"gopkg.in/yaml.v3"
)

type suiteYAML struct {
	Name  string         `yaml:"name"`
	Vars  map[string]any `yaml:"vars"`
	Tests []testYAML     `yaml:"tests"`
}

type testYAML struct {
	Name    string          `yaml:"name"`
	Skip    string          `yaml:"skip"`
	Request requestYAML     `yaml:"request"`
	Assert  []assertionYAML `yaml:"assert"`
	Capture []captureYAML   `yaml:"capture"`
}

type requestYAML struct {
	Method      string            `yaml:"method"`
	URL         string            `yaml:"url"`
	PathParams  map[string]string `yaml:"pathParams"`
	QueryParams map[string]string `yaml:"queryParams"`
	Headers     map[string]string `yaml:"headers"`
	TimeoutMs   int               `yaml:"timeoutMs"`
}

// assertionYAML carries the subject plus exactly one operator key. Pointer
// fields distinguish "absent" from zero values; equals/notEquals are value
// yaml.Node fields (yaml.v3 does not decode into *yaml.Node) gated on
// IsZero so they keep the scalar's native type.
type assertionYAML struct {
	Subject   string    `yaml:"subject"`
	Equals    yaml.Node `yaml:"equals"`
	NotEquals yaml.Node `yaml:"notEquals"`
	Length    *int      `yaml:"length"`
	Contains  *string   `yaml:"contains"`
	Matches   *string   `yaml:"matches"`
	Exists    *bool     `yaml:"exists"`
	Schema    *string   `yaml:"schema"`
}

type captureYAML struct {
	Name string `yaml:"name"`
	From string `yaml:"from"`
	Path string `yaml:"path"`
}

// Load reads and validates a suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}
	return Parse(data, path)
}

// Parse validates suite YAML and converts it to runtime types.
func Parse(data []byte, path string) (*Suite, error) {
	var raw suiteYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if len(raw.Tests) == 0 {
		return nil, fmt.Errorf("%s: suite has no tests", path)
	}

	s := &Suite{
		Name: raw.Name,
		Path: path,
		Vars: raw.Vars,
	}

	for i, tr := range raw.Tests {
		test, err := convertTest(tr, i)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		s.Tests = append(s.Tests, test)
	}

	return s, nil
}

func convertTest(tr testYAML, index int) (*Test, error) {
	name := tr.Name
	if name == "" {
		name = fmt.Sprintf("test #%d", index+1)
	}

	if tr.Request.URL == "" {
		return nil, fmt.Errorf("test %q: request.url is required", name)
	}

	method := strings.ToUpper(tr.Request.Method)
	if method == "" {
		method = "GET"
	}

	test := &Test{
		Name: name,
		Skip: tr.Skip,
		Request: &Request{
			Method:      method,
			URL:         tr.Request.URL,
			PathParams:  tr.Request.PathParams,
			QueryParams: tr.Request.QueryParams,
			Headers:     tr.Request.Headers,
			TimeoutMs:   tr.Request.TimeoutMs,
		},
	}

	for j, ar := range tr.Assert {
		a, err := convertAssertion(ar)
		if err != nil {
			return nil, fmt.Errorf("test %q: assert[%d]: %w", name, j, err)
		}
		test.Assertions = append(test.Assertions, a)
	}

	for j, cr := range tr.Capture {
		c, err := convertCapture(cr)
		if err != nil {
			return nil, fmt.Errorf("test %q: capture[%d]: %w", name, j, err)
		}
		test.Captures = append(test.Captures, c)
	}

	return test, nil
}

func convertAssertion(ar assertionYAML) (*assertions.Assertion, error) {
	if ar.Subject == "" {
		return nil, fmt.Errorf("subject is required")
	}

	a := &assertions.Assertion{Subject: ar.Subject}

	set := 0
	if !ar.Equals.IsZero() {
		var v any
		if err := ar.Equals.Decode(&v); err != nil {
			return nil, fmt.Errorf("equals: %w", err)
		}
		a.Operator = assertions.OpEquals
		a.Expected = v
		set++
	}
	if !ar.NotEquals.IsZero() {
		var v any
		if err := ar.NotEquals.Decode(&v); err != nil {
			return nil, fmt.Errorf("notEquals: %w", err)
		}
		a.Operator = assertions.OpNotEquals
		a.Expected = v
		set++
	}
	if ar.Length != nil {
		a.Operator = assertions.OpLength
		a.Expected = *ar.Length
		set++
	}
	if ar.Contains != nil {
		a.Operator = assertions.OpContains
		a.Expected = *ar.Contains
		set++
	}
	if ar.Matches != nil {
		a.Operator = assertions.OpMatches
		a.Expected = *ar.Matches
		set++
	}
	if ar.Exists != nil {
		if *ar.Exists {
			a.Operator = assertions.OpExists
		} else {
			a.Operator = assertions.OpNotExists
		}
		set++
	}
	if ar.Schema != nil {
		a.Operator = assertions.OpSchema
		a.Expected = *ar.Schema
		set++
	}

	if set == 0 {
		return nil, fmt.Errorf("subject %q has no operator (equals, notEquals, length, contains, matches, exists, schema)", ar.Subject)
	}
	if set > 1 {
		return nil, fmt.Errorf("subject %q has %d operators, want exactly one", ar.Subject, set)
	}

	return a, nil
}

func convertCapture(cr captureYAML) (*capture.Capture, error) {
	if cr.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	source := capture.Source(cr.From)
	if cr.From == "" {
		source = capture.SourceBody
	}

	switch source {
	case capture.SourceBody, capture.SourceHeader, capture.SourceStatus:
	default:
		return nil, fmt.Errorf("unknown capture source %q", cr.From)
	}

	if source != capture.SourceStatus && cr.Path == "" {
		return nil, fmt.Errorf("capture %q: path is required", cr.Name)
	}

	return &capture.Capture{
		Name:   cr.Name,
		Source: source,
		Path:   cr.Path,
	}, nil
}
