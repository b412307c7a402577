package assertions

// Operator is the comparison applied between the resolved subject value and
// the expected value.
type Operator int

const (
	OpEquals Operator = iota
	OpNotEquals
	OpLength
	OpContains
	OpMatches
	OpExists
	OpNotExists
	OpSchema
)

var operatorNames = map[Operator]string{
	OpEquals:    "equals",
	OpNotEquals: "notEquals",
	OpLength:    "length",
	OpContains:  "contains",
	OpMatches:   "matches",
	OpExists:    "exists",
	OpNotExists: "notExists",
	OpSchema:    "schema",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "unknown"
}

// Assertion is a (selector, comparison, expected value) triple.
//
// Subject forms:
//   - "status"            response status code
//   - "header <Name>"     named header, case-insensitive lookup
//   - "body.<path>"       gjson path into the JSON body; supports dotted
//     fields, numeric indexes ("a.1.b" or "a[1].b") and the all-elements
//     form "a.#.field" which yields the field across every array element
//   - "duration"          request duration in milliseconds
type Assertion struct {
	Subject  string
	Operator Operator
	Expected any
}

// Result is the outcome of evaluating one assertion. Missing is set when the
// subject itself did not resolve (absent header, unresolved body path); it is
// reported separately from a value mismatch so "missing" and "wrong" read
// differently in output.
type Result struct {
	Passed   bool
	Missing  bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
}
