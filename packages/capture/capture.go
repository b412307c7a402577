package capture

import (
	"github.com/restlabs/restcheck/packages/http"
	"github.com/tidwall/gjson"
)

// Source is where a captured value is read from.
type Source string

const (
	SourceBody   Source = "body"
	SourceHeader Source = "header"
	SourceStatus Source = "status"
)

// Capture names a value to extract from a response. Body captures resolve a
// gjson path; header captures use case-insensitive lookup.
type Capture struct {
	Name   string
	Source Source
	Path   string
}

type Extractor struct {
	response *http.Response
	bodyJSON gjson.Result
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{
		response: resp,
	}
	if resp.IsJSON() {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
	}
	return e
}

func (e *Extractor) Extract(c *Capture) (any, bool) {
	switch c.Source {
	case SourceBody:
		return e.extractFromBody(c.Path)
	case SourceHeader:
		return e.extractFromHeader(c.Path)
	case SourceStatus:
		return e.response.StatusCode, true
	default:
		return nil, false
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		if path == "" {
			return e.response.BodyString(), true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

func (e *Extractor) extractFromHeader(name string) (any, bool) {
	if !e.response.HasHeader(name) {
		return nil, false
	}
	return e.response.Header(name), true
}

func ExtractAll(resp *http.Response, captures []*Capture) map[string]any {
	extractor := NewExtractor(resp)
	results := make(map[string]any)

	for _, c := range captures {
		if value, ok := extractor.Extract(c); ok {
			results[c.Name] = value
		}
	}

	return results
}
