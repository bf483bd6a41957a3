// ABOUTME: Tests for the fake FAQ service
// ABOUTME: Covers canned queries, catalogue search, the no-match sentinel, paging, and client round trips

package fakefaq

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/faq-widget/internal/answer"
	"github.com/2389/faq-widget/internal/conversation"
)

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeFAQs(t *testing.T, rec *httptest.ResponseRecorder) []FAQ {
	t.Helper()
	var out []FAQ
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestAsk_CannedQueryIsCaseInsensitive(t *testing.T) {
	h := NewServer(DefaultFixture(), Options{}, nil).Handler()

	rec := post(t, h, "/ask", `{"query":"  ACCOUNT "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeFAQs(t, rec)
	require.Len(t, results, 2)
	assert.Equal(t, "How do I reset my portal password?", results[0].Question)
}

func TestAsk_CatalogueSearchRanksBestFirst(t *testing.T) {
	h := NewServer(DefaultFixture(), Options{}, nil).Handler()

	results := decodeFAQs(t, post(t, h, "/ask", `{"query":"tuition fees"}`))

	require.Len(t, results, 2)
	assert.Equal(t, "Where can I pay tuition fees?", results[0].Question)
	assert.Equal(t, "What is the deadline for paying tuition fees?", results[1].Question)
}

func TestAsk_SingleStrongMatch(t *testing.T) {
	h := NewServer(DefaultFixture(), Options{}, nil).Handler()

	results := decodeFAQs(t, post(t, h, "/ask", `{"query":"library opening hours?"}`))

	require.Len(t, results, 1)
	assert.Equal(t, "What are the library opening hours?", results[0].Question)
}

func TestAsk_NoMatchReturnsSentinel(t *testing.T) {
	h := NewServer(DefaultFixture(), Options{}, nil).Handler()

	rec := post(t, h, "/ask", `{"query":"quantum chromodynamics"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"Answer":"Sorry, no relevant answer found."}]`, rec.Body.String())
}

func TestAsk_EmptyQuery(t *testing.T) {
	h := NewServer(DefaultFixture(), Options{}, nil).Handler()

	for _, body := range []string{`{"query":"   "}`, `{}`, ``} {
		rec := post(t, h, "/ask", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Empty query"}`, rec.Body.String(), body)
	}
}

func TestAsk_InvalidJSON(t *testing.T) {
	h := NewServer(DefaultFixture(), Options{}, nil).Handler()

	rec := post(t, h, "/ask", `{"query":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk_MaxResults(t *testing.T) {
	fixture := &Fixture{FAQs: []FAQ{
		{Question: "campus parking permit"},
		{Question: "campus parking fines"},
		{Question: "campus parking map"},
	}}
	h := NewServer(fixture, Options{MaxResults: 2, Threshold: 0.1}, nil).Handler()

	results := decodeFAQs(t, post(t, h, "/ask", `{"query":"campus parking"}`))

	assert.Len(t, results, 2)
}

func TestData_Pages(t *testing.T) {
	fixture := DefaultFixture()
	h := NewServer(fixture, Options{}, nil).Handler()

	tests := []struct {
		name      string
		body      string
		wantPage  int
		wantPer   int
		wantItems int
	}{
		{"defaults", `{}`, 1, 10, 10},
		{"second page", `{"pageNumber":2,"perPage":10}`, 2, 10, len(fixture.FAQs) - 10},
		{"past the end", `{"pageNumber":9,"perPage":10}`, 9, 10, 0},
		{"small pages", `{"pageNumber":3,"perPage":5}`, 3, 5, len(fixture.FAQs) - 10},
		{"huge page number", `{"pageNumber":4611686018427387904,"perPage":3}`, 4611686018427387904, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/data", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp dataResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantPage, resp.Page)
			assert.Equal(t, tt.wantPer, resp.PerPage)
			assert.Equal(t, len(fixture.FAQs), resp.TotalRecords)
			assert.Len(t, resp.Items, tt.wantItems)
			assert.NotNil(t, resp.Items)
		})
	}
}

func TestWrongMethod(t *testing.T) {
	h := NewServer(DefaultFixture(), Options{}, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/ask", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
faqs:
  - question: "Where is the gym?"
    answer: "Behind the main hall."
queries:
  "  Gym  ":
    - question: "Where is the gym?"
      answer: "Behind the main hall."
`), 0644))

	f, err := LoadFixture(path)
	require.NoError(t, err)
	assert.Len(t, f.FAQs, 1)
	assert.Contains(t, f.Queries, "gym")

	_, err = ParseFixture([]byte("faqs:\n  - answer: \"no question\"\n"))
	assert.Error(t, err)

	_, err = ParseFixture([]byte(""))
	assert.Error(t, err, "an empty fixture is rejected")

	_, err = LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestClientRoundTrip(t *testing.T) {
	server := httptest.NewServer(NewServer(DefaultFixture(), Options{}, nil).Handler())
	defer server.Close()

	client := answer.NewClient(server.URL, time.Second, nil)

	results, err := client.Ask(t.Context(), "account")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = client.Ask(t.Context(), "quantum chromodynamics")
	require.NoError(t, err)
	assert.True(t, conversation.IsNoMatch(results))

	_, err = client.Ask(t.Context(), "  ")
	require.ErrorIs(t, err, answer.ErrBadStatus)
	assert.Contains(t, err.Error(), "Empty query")

	page, err := client.Browse(t.Context(), 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 5)
}

func TestAsk_NullCannedResultIsNoMatch(t *testing.T) {
	fixture, err := ParseFixture([]byte("queries:\n  hours:\n"))
	require.NoError(t, err)
	require.NotNil(t, fixture.Queries["hours"])

	h := NewServer(fixture, Options{}, nil).Handler()
	server := httptest.NewServer(h)
	defer server.Close()

	rec := post(t, h, "/ask", `{"query":"hours"}`)
	assert.JSONEq(t, `[]`, rec.Body.String())

	results, err := answer.NewClient(server.URL, time.Second, nil).Ask(t.Context(), "hours")
	require.NoError(t, err)
	assert.True(t, conversation.IsNoMatch(results))
}

func TestDelayRespectsClientTimeout(t *testing.T) {
	server := httptest.NewServer(NewServer(DefaultFixture(), Options{Delay: time.Second}, nil).Handler())
	defer server.Close()

	client := answer.NewClient(server.URL, 50*time.Millisecond, nil)

	_, err := client.Ask(t.Context(), "account")
	assert.Error(t, err)
}
