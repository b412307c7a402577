package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandURL_PathParams(t *testing.T) {
	req := NewRequest("GET", "http://ergast.com/api/f1/{season}/circuits.json")
	req.SetPathParam("season", "2017")

	assert.Equal(t, "http://ergast.com/api/f1/2017/circuits.json", req.ExpandURL())
	assert.Empty(t, req.UnresolvedPlaceholders())
}

func TestExpandURL_MultiplePlaceholders(t *testing.T) {
	req := NewRequest("GET", "http://example.com/{a}/{b}/{c}.json")
	req.SetPathParam("a", "one")
	req.SetPathParam("b", "two")
	req.SetPathParam("c", "three")

	assert.Equal(t, "http://example.com/one/two/three.json", req.ExpandURL())
	assert.Empty(t, req.UnresolvedPlaceholders())
}

func TestExpandURL_MissingParamStaysLiteral(t *testing.T) {
	req := NewRequest("GET", "http://ergast.com/api/{badParam}/{season}/circuits.json")
	req.SetPathParam("season", "2017")

	assert.Equal(t, "http://ergast.com/api/{badParam}/2017/circuits.json", req.ExpandURL())
	assert.Equal(t, []string{"badParam"}, req.UnresolvedPlaceholders())
}

func TestExpandURL_ExtraParamsIgnored(t *testing.T) {
	req := NewRequest("GET", "http://example.com/{season}/circuits.json")
	req.SetPathParam("season", "2017")
	req.SetPathParam("unused", "whatever")

	assert.Equal(t, "http://example.com/2017/circuits.json", req.ExpandURL())
}

func TestExpandURL_NoEncoding(t *testing.T) {
	// Values are inserted as-is; any encoding must already be in the value.
	req := NewRequest("GET", "http://example.com/{id}.json")
	req.SetPathParam("id", "a b")

	assert.Equal(t, "http://example.com/a b.json", req.ExpandURL())
}

func TestBuildURL_QueryParams(t *testing.T) {
	req := NewRequest("GET", "http://md5.jsontest.com")
	req.SetQueryParam("text", "oohrah")

	assert.Equal(t, "http://md5.jsontest.com?text=oohrah", req.BuildURL())
}

func TestBuildURL_QueryParamsEncoded(t *testing.T) {
	req := NewRequest("GET", "http://example.com/search")
	req.SetQueryParam("q", "a b&c")

	assert.Equal(t, "http://example.com/search?q=a+b%26c", req.BuildURL())
}

func TestBuildURL_PathAndQueryCombined(t *testing.T) {
	req := NewRequest("GET", "http://example.com/api/{season}/circuits.json")
	req.SetPathParam("season", "2017")
	req.SetQueryParam("limit", "30")

	assert.Equal(t, "http://example.com/api/2017/circuits.json?limit=30", req.BuildURL())
}

func TestBuildURL_NoParams(t *testing.T) {
	req := NewRequest("GET", "http://example.com/plain")

	assert.Equal(t, "http://example.com/plain", req.BuildURL())
}

func TestParseFormBody(t *testing.T) {
	result := ParseFormBody("a=1&b=hello+world&c=x%26y")

	assert.Equal(t, "1", result["a"])
	assert.Equal(t, "hello world", result["b"])
	assert.Equal(t, "x&y", result["c"])
}
