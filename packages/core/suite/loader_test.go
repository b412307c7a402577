package suite

import (
	"testing"

	"github.com/restlabs/restcheck/packages/assertions"
	"github.com/restlabs/restcheck/packages/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const circuitsSuite = `
name: ergast circuits
vars:
  season: "2017"
tests:
  - name: circuit count for 2017
    request:
      url: http://ergast.com/api/f1/{season}/circuits.json
      pathParams:
        season: "{{season}}"
    assert:
      - subject: body.MRData.CircuitTable.Circuits.#.circuitId
        length: 20
    capture:
      - name: circuitId
        from: body
        path: MRData.CircuitTable.Circuits.1.circuitId

  - name: response headers
    request:
      method: get
      url: http://ergast.com/api/f1/2017/circuits.json
    assert:
      - subject: status
        equals: 200
      - subject: header Content-Type
        contains: application/json
      - subject: header Content-Length
        equals: "4551"
`

func TestParse_Suite(t *testing.T) {
	s, err := Parse([]byte(circuitsSuite), "circuits.yaml")
	require.NoError(t, err)

	assert.Equal(t, "ergast circuits", s.Name)
	assert.Equal(t, "2017", s.Vars["season"])
	require.Len(t, s.Tests, 2)

	first := s.Tests[0]
	assert.Equal(t, "GET", first.Request.Method)
	assert.Equal(t, "http://ergast.com/api/f1/{season}/circuits.json", first.Request.URL)
	assert.Equal(t, "{{season}}", first.Request.PathParams["season"])

	require.Len(t, first.Assertions, 1)
	assert.Equal(t, assertions.OpLength, first.Assertions[0].Operator)
	assert.Equal(t, 20, first.Assertions[0].Expected)

	require.Len(t, first.Captures, 1)
	assert.Equal(t, capture.SourceBody, first.Captures[0].Source)
	assert.Equal(t, "MRData.CircuitTable.Circuits.1.circuitId", first.Captures[0].Path)

	second := s.Tests[1]
	// lowercase method is normalized
	assert.Equal(t, "GET", second.Request.Method)
	require.Len(t, second.Assertions, 3)
	assert.Equal(t, assertions.OpEquals, second.Assertions[0].Operator)
	assert.Equal(t, 200, second.Assertions[0].Expected)
	assert.Equal(t, assertions.OpContains, second.Assertions[1].Operator)
	// quoted scalar stays a string
	assert.Equal(t, "4551", second.Assertions[2].Expected)
}

func TestParse_QueryParams(t *testing.T) {
	s, err := Parse([]byte(`
tests:
  - name: checksum
    request:
      url: http://md5.jsontest.com
      queryParams:
        text: oohrah
    assert:
      - subject: body.md5
        equals: 4d69131dd7eaed4aedbafd4333c1ccf1
`), "checksum.yaml")
	require.NoError(t, err)

	assert.Equal(t, "oohrah", s.Tests[0].Request.QueryParams["text"])
}

func TestParse_EqualsScalarTypes(t *testing.T) {
	s, err := Parse([]byte(`
tests:
  - name: scalar forms
    request:
      url: http://example.com
    assert:
      - subject: status
        equals: 404
      - subject: body.md5
        equals: 4d69131dd7eaed4aedbafd4333c1ccf1
      - subject: body.MRData.CircuitTable.Circuits[0].Location[0].lat
        equals: "30.1328"
      - subject: body.enabled
        equals: true
      - subject: body.ratio
        notEquals: 0.5
`), "x.yaml")
	require.NoError(t, err)

	as := s.Tests[0].Assertions
	require.Len(t, as, 5)
	assert.Equal(t, 404, as[0].Expected)
	assert.Equal(t, "4d69131dd7eaed4aedbafd4333c1ccf1", as[1].Expected)
	// quoted scalar stays a string, not a float
	assert.Equal(t, "30.1328", as[2].Expected)
	assert.Equal(t, true, as[3].Expected)
	assert.Equal(t, assertions.OpNotEquals, as[4].Operator)
	assert.Equal(t, 0.5, as[4].Expected)
}

func TestParse_ExistsOperators(t *testing.T) {
	s, err := Parse([]byte(`
tests:
  - name: exists
    request:
      url: http://example.com
    assert:
      - subject: body.MRData
        exists: true
      - subject: body.Nope
        exists: false
`), "x.yaml")
	require.NoError(t, err)

	assert.Equal(t, assertions.OpExists, s.Tests[0].Assertions[0].Operator)
	assert.Equal(t, assertions.OpNotExists, s.Tests[0].Assertions[1].Operator)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "no tests",
			yaml: `name: empty`,
			want: "no tests",
		},
		{
			name: "missing url",
			yaml: "tests:\n  - name: bad\n    request:\n      method: GET",
			want: "request.url is required",
		},
		{
			name: "assertion without operator",
			yaml: "tests:\n  - name: bad\n    request:\n      url: http://x\n    assert:\n      - subject: status",
			want: "no operator",
		},
		{
			name: "assertion with two operators",
			yaml: "tests:\n  - name: bad\n    request:\n      url: http://x\n    assert:\n      - subject: status\n        equals: 200\n        length: 2",
			want: "exactly one",
		},
		{
			name: "capture without name",
			yaml: "tests:\n  - name: bad\n    request:\n      url: http://x\n    capture:\n      - path: a.b",
			want: "name is required",
		},
		{
			name: "capture with unknown source",
			yaml: "tests:\n  - name: bad\n    request:\n      url: http://x\n    capture:\n      - name: v\n        from: cookie\n        path: a",
			want: "unknown capture source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), "bad.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_SkipReason(t *testing.T) {
	s, err := Parse([]byte(`
tests:
  - name: flaky
    skip: upstream dataset changed
    request:
      url: http://example.com
`), "x.yaml")
	require.NoError(t, err)

	assert.Equal(t, "upstream dataset changed", s.Tests[0].Skip)
}
