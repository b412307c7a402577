package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/restlabs/restcheck/packages/assertions"
	"github.com/restlabs/restcheck/packages/capture"
	"github.com/restlabs/restcheck/packages/core/env"
	"github.com/restlabs/restcheck/packages/core/suite"
	"github.com/restlabs/restcheck/packages/http"
	"golang.org/x/time/rate"
)

type Runner struct {
	client   *http.Client
	resolver *env.Resolver
	limiter  *rate.Limiter
	config   *Config
}

type Config struct {
	Environment    string
	Verbose        bool
	Timeout        time.Duration
	FollowRedirect bool
	ValidateSSL    bool
	Proxy          string
	DefaultHeaders map[string]string
	Bail           bool
	NameFilter     string
	// RPS paces requests client-side; 0 means unlimited. Politeness toward
	// third-party services, not backpressure.
	RPS float64
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{FollowRedirect: true, ValidateSSL: true}
	}

	clientOpts := []http.ClientOption{
		http.WithFollowRedirects(cfg.FollowRedirect),
		http.WithValidateSSL(cfg.ValidateSSL),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, http.WithTimeout(cfg.Timeout))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}
	if len(cfg.DefaultHeaders) > 0 {
		clientOpts = append(clientOpts, http.WithDefaultHeaders(cfg.DefaultHeaders))
	}

	r := &Runner{
		client:   http.NewClient(clientOpts...),
		resolver: env.NewResolver(),
		config:   cfg,
	}
	if cfg.RPS > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	return r
}

// Resolver exposes the variable resolver so callers can seed environment
// variables before a run.
func (r *Runner) Resolver() *env.Resolver {
	return r.resolver
}

type RunResult struct {
	RunID    string
	File     string
	Results  []*TestResult
	Duration time.Duration
	Latency  *LatencySummary
	Passed   int
	Failed   int
	Skipped  int
}

type TestResult struct {
	Name       string
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Request    *http.Request
	Response   *http.Response
	Assertions []*assertions.Result
	Captures   map[string]any
	// Error is a transport-level failure (DNS, refused connection, timeout),
	// never an assertion mismatch.
	Error error
}

func (r *Runner) RunFile(path string) (*RunResult, error) {
	s, err := suite.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading suite: %w", err)
	}
	return r.RunSuite(s)
}

func (r *Runner) RunSuite(s *suite.Suite) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		RunID: uuid.New().String(),
		File:  s.Path,
	}

	r.resolver.SetVariables(s.Vars)

	baseDir := filepath.Dir(s.Path)
	recorder := newLatencyRecorder()

	for _, test := range s.Tests {
		if !r.shouldRun(test) {
			result.Results = append(result.Results, &TestResult{
				Name:       test.Name,
				Skipped:    true,
				SkipReason: "filtered out",
			})
			result.Skipped++
			continue
		}

		if test.Skip != "" {
			result.Results = append(result.Results, &TestResult{
				Name:       test.Name,
				Skipped:    true,
				SkipReason: test.Skip,
			})
			result.Skipped++
			continue
		}

		testResult := r.runTest(test, baseDir)
		result.Results = append(result.Results, testResult)
		if testResult.Response != nil {
			recorder.Record(testResult.Response.Duration)
		}

		if testResult.Passed {
			result.Passed++
		} else {
			result.Failed++
			if r.config.Bail {
				break
			}
		}
	}

	result.Duration = time.Since(start)
	result.Latency = recorder.Summary()
	return result, nil
}

func (r *Runner) shouldRun(test *suite.Test) bool {
	if r.config.NameFilter == "" {
		return true
	}
	return matchesPattern(test.Name, r.config.NameFilter)
}

func (r *Runner) runTest(test *suite.Test, baseDir string) *TestResult {
	result := &TestResult{
		Name:     test.Name,
		Captures: make(map[string]any),
	}

	httpReq := r.buildRequest(test.Request)
	result.Request = httpReq

	if r.limiter != nil {
		_ = r.limiter.Wait(context.Background())
	}

	start := time.Now()
	resp, err := r.client.Do(httpReq)
	result.Duration = time.Since(start)

	if err != nil {
		// Transport failure: the test aborts here, no assertions run.
		result.Error = err
		result.Passed = false
		return result
	}
	result.Response = resp

	if len(test.Assertions) > 0 {
		result.Assertions = assertions.EvaluateAllWithBaseDir(resp, test.Assertions, baseDir)
		result.Passed = true
		for _, a := range result.Assertions {
			if !a.Passed {
				result.Passed = false
				break
			}
		}
	} else {
		result.Passed = resp.IsSuccess()
	}

	if len(test.Captures) > 0 {
		values := capture.ExtractAll(resp, test.Captures)
		for name, value := range values {
			result.Captures[name] = value
			r.resolver.SetCapture(test.Name, name, value)
		}
	}

	return result
}

// buildRequest resolves {{var}} references in every request field and
// converts the suite request into an http one. Path placeholders ({name})
// are left to the http package.
func (r *Runner) buildRequest(req *suite.Request) *http.Request {
	httpReq := http.NewRequest(req.Method, r.resolver.Resolve(req.URL))

	for k, v := range req.PathParams {
		httpReq.SetPathParam(k, r.resolver.Resolve(v))
	}
	for k, v := range req.QueryParams {
		httpReq.SetQueryParam(k, r.resolver.Resolve(v))
	}
	for k, v := range req.Headers {
		httpReq.SetHeader(k, r.resolver.Resolve(v))
	}
	if req.TimeoutMs > 0 {
		httpReq.SetTimeout(time.Duration(req.TimeoutMs) * time.Millisecond)
	}

	return httpReq
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if pattern[0] == '*' && pattern[len(pattern)-1] == '*' {
		substr := pattern[1 : len(pattern)-1]
		for i := 0; i <= len(name)-len(substr); i++ {
			if name[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	}

	if pattern[0] == '*' {
		suffix := pattern[1:]
		return len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix
	}

	if pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(name) >= len(prefix) && name[:len(prefix)] == prefix
	}

	return name == pattern
}
