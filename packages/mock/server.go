// Package mock provides a local HTTP server that serves canned responses
// from YAML route fixtures. It backs the `restcheck mock` command and the
// hermetic runner tests.
package mock

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Server serves fixture routes over HTTP.
type Server struct {
	router  *Router
	port    int
	delay   time.Duration
	verbose bool
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithVerbose enables verbose logging
func WithVerbose(verbose bool) Option {
	return func(s *Server) {
		s.verbose = verbose
	}
}

// NewServer creates a new mock server
func NewServer(opts ...Option) *Server {
	s := &Server{
		router: NewRouter(),
		port:   3000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type fixturesYAML struct {
	Routes []routeYAML `yaml:"routes"`
}

type routeYAML struct {
	Name    string            `yaml:"name"`
	Method  string            `yaml:"method"`
	Path    string            `yaml:"path"`
	Status  int               `yaml:"status"`
	Headers map[string]string `yaml:"headers"`
	Body    string            `yaml:"body"`
}

// LoadFile loads routes from a YAML fixtures file
func (s *Server) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading fixtures file: %w", err)
	}
	if err := s.LoadData(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadData loads routes from YAML fixture data
func (s *Server) LoadData(data []byte) error {
	var raw fixturesYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing fixtures: %w", err)
	}

	if len(raw.Routes) == 0 {
		return fmt.Errorf("fixtures declare no routes")
	}

	for i, r := range raw.Routes {
		if r.Path == "" {
			return fmt.Errorf("route #%d: path is required", i+1)
		}

		method := strings.ToUpper(r.Method)
		if method == "" {
			method = "GET"
		}

		status := r.Status
		if status == 0 {
			status = 200
		}

		headers := r.Headers
		if headers == nil {
			headers = map[string]string{}
		}
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = "application/json"
		}

		s.router.AddRoute(&Route{
			Name:        r.Name,
			Method:      method,
			PathPattern: normalizePath(r.Path),
			Status:      status,
			Headers:     headers,
			Body:        r.Body,
		})
	}

	return nil
}

// Handler returns the server's http.Handler, for tests that mount it on an
// httptest server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// Routes returns all registered routes
func (s *Server) Routes() []*Route {
	return s.router.Routes()
}

// Start starts the mock server
func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext starts the server with context for graceful shutdown
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("Mock server starting on http://localhost:%d", s.port)
	log.Printf("Routes loaded: %d", len(s.router.routes))

	if s.verbose {
		for _, route := range s.router.routes {
			log.Printf("  %s %s -> %d", route.Method, route.PathPattern, route.Status)
		}
	}

	return server.ListenAndServe()
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	route, params := s.router.Match(r.Method, r.URL.Path)

	if route == nil {
		if s.verbose {
			log.Printf("%s %s -> 404 Not Found (%s)", r.Method, r.URL.Path, time.Since(start))
		}
		http.NotFound(w, r)
		return
	}

	body := resolveBodyParams(route.Body, params)

	for key, value := range route.Headers {
		w.Header().Set(key, value)
	}
	if _, ok := route.Headers["Content-Length"]; !ok {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	}

	w.WriteHeader(route.Status)
	w.Write([]byte(body))

	if s.verbose {
		log.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, route.Status, time.Since(start))
	}
}

// resolveBodyParams substitutes {name} placeholders in the body with the
// values matched from the path.
func resolveBodyParams(body string, params map[string]string) string {
	result := body
	for key, value := range params {
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	return result
}
