package http

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Request describes a single HTTP request before it is sent. URL may contain
// {name} placeholders that are filled from PathParams.
type Request struct {
	Method      string
	URL         string
	Headers     map[string]string
	PathParams  map[string]string
	QueryParams map[string]string
	Timeout     time.Duration
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:      method,
		URL:         requestURL,
		Headers:     make(map[string]string),
		PathParams:  make(map[string]string),
		QueryParams: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetPathParam(key, value string) *Request {
	r.PathParams[key] = value
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	r.QueryParams[key] = value
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// ExpandURL substitutes every {name} placeholder that has a matching path
// parameter. Substitution is plain string interpolation; values are inserted
// as-is, with no extra encoding. Placeholders without a matching parameter
// stay as literal {name} text, so the remote service sees the malformed
// path. Parameters that match no placeholder are ignored.
func (r *Request) ExpandURL() string {
	return placeholderPattern.ReplaceAllStringFunc(r.URL, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := r.PathParams[name]; ok {
			return value
		}
		return match
	})
}

// UnresolvedPlaceholders returns the names of {name} tokens that remain after
// path parameter expansion.
func (r *Request) UnresolvedPlaceholders() []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(r.ExpandURL(), -1) {
		names = append(names, m[1])
	}
	return names
}

// BuildURL returns the final URL: placeholders expanded and query parameters
// appended as ?key=value&... pairs.
func (r *Request) BuildURL() string {
	expanded := r.ExpandURL()
	if len(r.QueryParams) == 0 {
		return expanded
	}

	u, err := url.Parse(expanded)
	if err != nil {
		return expanded
	}

	q := u.Query()
	for k, v := range r.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ParseFormBody splits an application/x-www-form-urlencoded body into a map.
func ParseFormBody(body string) map[string]string {
	result := make(map[string]string)
	pairs := strings.Split(body, "&")
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			key, _ := url.QueryUnescape(kv[0])
			value, _ := url.QueryUnescape(kv[1])
			result[key] = value
		}
	}
	return result
}
