// ABOUTME: HTTP stand-in for the remote FAQ answering service
// ABOUTME: Serves POST /ask and POST /data from a fixture for local runs and tests

package fakefaq

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// NoMatchAnswer is the sentinel answer returned when nothing matches.
const NoMatchAnswer = "Sorry, no relevant answer found."

const defaultPerPage = 10

// Options tunes the fake service.
type Options struct {
	// Threshold is the minimum match score; zero means DefaultThreshold.
	Threshold float64
	// MaxResults caps /ask results; zero means DefaultMaxResults.
	MaxResults int
	// Delay is added before every /ask response.
	Delay time.Duration
}

// Server answers FAQ queries from a fixture.
type Server struct {
	mu         sync.RWMutex
	fixture    *Fixture
	threshold  float64
	maxResults int
	delay      time.Duration
	logger     *slog.Logger
}

// NewServer creates a fake service over fixture. Pass nil logger for default.
func NewServer(fixture *Fixture, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	return &Server{
		fixture:    fixture,
		threshold:  opts.Threshold,
		maxResults: opts.MaxResults,
		delay:      opts.Delay,
		logger:     logger.With("component", "fakefaq"),
	}
}

// SetFixture replaces the fixture being served.
func (s *Server) SetFixture(f *Fixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixture = f
}

func (s *Server) currentFixture() *Fixture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fixture
}

// Handler returns the service routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("POST /data", s.handleData)
	return mux
}

type askRequest struct {
	Query string `json:"query"`
}

type dataRequest struct {
	PageNumber int `json:"pageNumber"`
	PerPage    int `json:"perPage"`
}

type dataResponse struct {
	Items        []FAQ `json:"items"`
	Page         int   `json:"page"`
	PerPage      int   `json:"perPage"`
	TotalRecords int   `json:"totalRecords"`
}

// Answer returns the /ask result for query: a canned fixture result, else
// catalogue matches, else the no-match sentinel.
func (s *Server) Answer(query string) []FAQ {
	fixture := s.currentFixture()
	if results, ok := fixture.Queries[normalizeQuery(query)]; ok {
		return results
	}
	if results := search(fixture.FAQs, query, s.threshold, s.maxResults); len(results) > 0 {
		return results
	}
	return []FAQ{{Answer: NoMatchAnswer}}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	query := normalizeQuery(req.Query)
	if query == "" {
		sendJSONError(w, http.StatusBadRequest, "Empty query")
		return
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}

	results := s.Answer(query)
	s.logger.Debug("answered query", "query_len", len(query), "results", len(results))
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	var req dataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PageNumber < 1 {
		req.PageNumber = 1
	}
	if req.PerPage < 1 {
		req.PerPage = defaultPerPage
	}

	faqs := s.currentFixture().FAQs
	total := len(faqs)
	start := total
	if req.PageNumber-1 <= total/req.PerPage {
		start = min((req.PageNumber-1)*req.PerPage, total)
	}
	end := min(start+req.PerPage, total)

	writeJSON(w, http.StatusOK, dataResponse{
		Items:        append([]FAQ{}, faqs[start:end]...),
		Page:         req.PageNumber,
		PerPage:      req.PerPage,
		TotalRecords: total,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendJSONError writes a JSON error response.
func sendJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
