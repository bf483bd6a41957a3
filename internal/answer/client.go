// ABOUTME: HTTP/JSON client for the remote FAQ answering service
// ABOUTME: Implements conversation.AnswerService over POST /ask and exposes POST /data browsing

package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/faq-widget/internal/conversation"
)

const (
	// DefaultEndpoint is where the FAQ service listens out of the box.
	DefaultEndpoint = "http://localhost:5000"
	// DefaultTimeout bounds a single round-trip when none is configured.
	DefaultTimeout = 10 * time.Second

	defaultPerPage = 10
	maxBodyBytes   = 4 << 20
)

var (
	// ErrBadStatus wraps every non-2xx response.
	ErrBadStatus = errors.New("answer service returned error status")
	// ErrMalformedResponse is returned when a 2xx body is not the expected JSON shape.
	ErrMalformedResponse = errors.New("malformed answer service response")
)

// Client talks to the FAQ service. The zero value is not usable; use NewClient.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the service at endpoint. Empty endpoint and
// non-positive timeout fall back to the defaults.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "answer"),
	}
}

// askRequest is the JSON body sent to POST /ask.
type askRequest struct {
	Query string `json:"query"`
}

// wireSuggestion is one /ask array element. Answer is required; the
// service's no-match entry carries no Question.
type wireSuggestion struct {
	Question *string `json:"Question"`
	Answer   *string `json:"Answer"`
}

// browseRequest is the JSON body sent to POST /data.
type browseRequest struct {
	PageNumber int `json:"pageNumber"`
	PerPage    int `json:"perPage"`
}

// Page is one page of the FAQ catalogue returned by POST /data.
type Page struct {
	Items        []conversation.Suggestion `json:"items"`
	Page         int                       `json:"page"`
	PerPage      int                       `json:"perPage"`
	TotalRecords int                       `json:"totalRecords"`
}

// Ask sends query to POST /ask and returns the candidates in service order.
// Transport errors, non-2xx statuses and bodies that are not a JSON array
// are all returned as errors.
func (c *Client) Ask(ctx context.Context, query string) ([]conversation.Suggestion, error) {
	data, err := c.post(ctx, "/ask", askRequest{Query: query})
	if err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		return nil, fmt.Errorf("%w: expected JSON array", ErrMalformedResponse)
	}
	var entries []*wireSuggestion
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	results := make([]conversation.Suggestion, 0, len(entries))
	for i, e := range entries {
		if e == nil || e.Answer == nil {
			return nil, fmt.Errorf("%w: element %d has no Answer", ErrMalformedResponse, i)
		}
		s := conversation.Suggestion{Answer: *e.Answer}
		if e.Question != nil {
			s.Question = *e.Question
		}
		results = append(results, s)
	}

	c.logger.Debug("answer received", "results", len(results))
	return results, nil
}

// Browse fetches one page of the FAQ catalogue. Pages are 1-based; a
// non-positive page or perPage falls back to 1 and 10.
func (c *Client) Browse(ctx context.Context, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}

	data, err := c.post(ctx, "/data", browseRequest{PageNumber: page, PerPage: perPage})
	if err != nil {
		return nil, err
	}

	var out Page
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}

// post sends body as JSON and returns the raw 2xx response body.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling answer service: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("answer service responded",
		"path", path,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp map[string]any
		if json.Unmarshal(data, &errResp) == nil {
			if msg, ok := errResp["error"].(string); ok && msg != "" {
				return nil, fmt.Errorf("%w %d: %s", ErrBadStatus, resp.StatusCode, msg)
			}
		}
		return nil, fmt.Errorf("%w %d", ErrBadStatus, resp.StatusCode)
	}

	return data, nil
}
