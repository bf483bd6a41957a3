// ABOUTME: HTTP surface of the FAQ widget: JSON API, SSE event stream, and embedded page
// ABOUTME: Every handler is a thin translation onto ConversationController operations

package webwidget

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/2389/faq-widget/internal/conversation"
	"github.com/2389/faq-widget/internal/dedupe"
)

const (
	// idempotencyTTL is how long a submit key is remembered.
	idempotencyTTL = 10 * time.Minute
	// idempotencyMaxKeys bounds the submit key cache.
	idempotencyMaxKeys = 1024
	// maxRequestBytes bounds JSON request bodies.
	maxRequestBytes = 64 << 10
	// defaultHeartbeat is the SSE keep-alive interval.
	defaultHeartbeat = 30 * time.Second
)

// Options configures a Server.
type Options struct {
	// Title is shown in the page header.
	Title string
	// SuggestionPrompt introduces pending suggestions.
	SuggestionPrompt string
	// Heartbeat overrides the SSE keep-alive interval.
	Heartbeat time.Duration
}

// Server exposes one ConversationController over HTTP.
type Server struct {
	controller *conversation.Controller
	events     *conversation.EventBroadcaster
	submits    *dedupe.Cache
	markdown   goldmark.Markdown
	page       *template.Template
	title      string
	prompt     string
	heartbeat  time.Duration
	logger     *slog.Logger
}

// New creates a Server for controller. events must be the broadcaster the
// controller publishes to.
func New(controller *conversation.Controller, events *conversation.EventBroadcaster, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = "Help"
	}
	if opts.SuggestionPrompt == "" {
		opts.SuggestionPrompt = "Did you mean one of these?"
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = defaultHeartbeat
	}

	return &Server{
		controller: controller,
		events:     events,
		submits:    dedupe.New(idempotencyTTL, idempotencyMaxKeys),
		markdown:   goldmark.New(),
		page:       template.Must(template.ParseFS(templateFS, "templates/index.html")),
		title:      opts.Title,
		prompt:     opts.SuggestionPrompt,
		heartbeat:  opts.Heartbeat,
		logger:     logger.With("component", "webwidget"),
	}
}

// Close releases background resources.
func (s *Server) Close() {
	s.submits.Close()
}

// RegisterRoutes adds the widget routes to mux. A request to a known path
// with the wrong method gets 405 from the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/draft", s.handleDraft)
	mux.HandleFunc("POST /api/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/suggestions/{index}", s.handleSuggestion)
	mux.HandleFunc("POST /api/open", s.handleOpen)
	mux.HandleFunc("POST /api/close", s.handleClose)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns an http.Handler serving all widget routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// messageView is a transcript message as sent to the browser.
type messageView struct {
	Sender   conversation.Sender `json:"sender"`
	Text     string              `json:"text"`
	HTML     string              `json:"html"`
	Sequence int                 `json:"sequence"`
}

// StateResponse is the JSON body of GET /api/state and of successful
// mutating requests.
type StateResponse struct {
	Messages         []messageView             `json:"messages"`
	Draft            string                    `json:"draft"`
	Suggestions      []conversation.Suggestion `json:"suggestions"`
	SuggestionPrompt string                    `json:"suggestion_prompt,omitempty"`
	State            conversation.RequestState `json:"state"`
	Visible          bool                      `json:"visible"`
	InputEnabled     bool                      `json:"input_enabled"`
}

// eventView is a controller event as sent over SSE.
type eventView struct {
	Type             conversation.EventType    `json:"type"`
	Message          *messageView              `json:"message,omitempty"`
	Suggestions      []conversation.Suggestion `json:"suggestions"`
	SuggestionPrompt string                    `json:"suggestion_prompt,omitempty"`
	State            conversation.RequestState `json:"state"`
	Draft            string                    `json:"draft"`
	Visible          bool                      `json:"visible"`
	InputEnabled     bool                      `json:"input_enabled"`
}

// SubmitRequest is the JSON body of POST /api/submit. When Text is set it
// replaces the draft before submitting.
type SubmitRequest struct {
	Text           *string `json:"text,omitempty"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

// DraftRequest is the JSON body of POST /api/draft.
type DraftRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Title string
	}{
		Title: s.title,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("failed to render widget page", "error", err)
	}
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, http.StatusOK)
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := decodeBody(r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.controller.UpdateDraft(req.Text) {
		s.sendJSONError(w, http.StatusConflict, "suggestions pending")
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := decodeBody(r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.IdempotencyKey != "" && !s.submits.Claim(req.IdempotencyKey) {
		s.logger.Debug("duplicate submit ignored", "idempotency_key", req.IdempotencyKey)
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
		return
	}

	status, message := s.submit(req.Text)
	if status != http.StatusAccepted {
		if req.IdempotencyKey != "" {
			s.submits.Release(req.IdempotencyKey)
		}
		s.sendJSONError(w, status, message)
		return
	}
	s.writeState(w, http.StatusAccepted)
}

// submit applies an optional draft and submits it, mapping refusal onto an
// HTTP status.
func (s *Server) submit(text *string) (int, string) {
	if text != nil && !s.controller.UpdateDraft(*text) {
		return http.StatusConflict, "input disabled"
	}

	snap := s.controller.Snapshot()
	if !snap.InputEnabled {
		return http.StatusConflict, "input disabled"
	}
	if strings.TrimSpace(snap.Draft) == "" {
		return http.StatusBadRequest, "query is empty"
	}

	// The state may have moved since the snapshot.
	if !s.controller.Submit() {
		return http.StatusConflict, "input disabled"
	}
	return http.StatusAccepted, ""
}

func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.sendJSONError(w, http.StatusNotFound, "unknown suggestion")
		return
	}

	err = s.controller.ResolveSuggestionAt(index)
	switch {
	case errors.Is(err, conversation.ErrNoSuggestions):
		s.sendJSONError(w, http.StatusConflict, "no suggestions pending")
		return
	case errors.Is(err, conversation.ErrUnknownSuggestion):
		s.sendJSONError(w, http.StatusNotFound, "unknown suggestion")
		return
	case err != nil:
		s.logger.Error("failed to resolve suggestion", "index", index, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	s.controller.Open()
	s.writeState(w, http.StatusOK)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	s.controller.Close()
	s.writeState(w, http.StatusOK)
}

// handleEvents streams controller events as SSE until the client goes away.
// The first event is a full snapshot so the client starts consistent.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	ctx := r.Context()
	events, subID := s.events.Subscribe(ctx)
	defer s.events.Unsubscribe(subID)

	s.writeSSEEvent(w, "snapshot", s.stateResponse(s.controller.Snapshot()))
	flusher.Flush()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()

		case event, ok := <-events:
			if !ok {
				return
			}
			s.writeSSEEvent(w, string(event.Type), s.eventView(event))
			flusher.Flush()
		}
	}
}

func (s *Server) writeState(w http.ResponseWriter, status int) {
	s.writeJSON(w, status, s.stateResponse(s.controller.Snapshot()))
}

func (s *Server) stateResponse(snap conversation.Snapshot) StateResponse {
	messages := make([]messageView, 0, len(snap.Transcript))
	for _, m := range snap.Transcript {
		messages = append(messages, s.messageView(m))
	}

	resp := StateResponse{
		Messages:     messages,
		Draft:        snap.Draft,
		Suggestions:  snap.Suggestions,
		State:        snap.State,
		Visible:      snap.Visible,
		InputEnabled: snap.InputEnabled,
	}
	if len(snap.Suggestions) > 0 {
		resp.SuggestionPrompt = s.prompt
	}
	return resp
}

func (s *Server) eventView(event *conversation.Event) eventView {
	view := eventView{
		Type:         event.Type,
		Suggestions:  event.Suggestions,
		State:        event.State,
		Draft:        event.Draft,
		Visible:      event.Visible,
		InputEnabled: event.InputEnabled,
	}
	if view.Suggestions == nil {
		view.Suggestions = []conversation.Suggestion{}
	}
	if len(event.Suggestions) > 0 {
		view.SuggestionPrompt = s.prompt
	}
	if event.Message != nil {
		mv := s.messageView(*event.Message)
		view.Message = &mv
	}
	return view
}

func (s *Server) messageView(m conversation.Message) messageView {
	return messageView{
		Sender:   m.Sender,
		Text:     m.Text,
		HTML:     s.renderMarkdown(m.Text),
		Sequence: m.Sequence,
	}
}

// renderMarkdown converts message text to HTML. Raw HTML in the text is
// omitted by goldmark's default renderer.
func (s *Server) renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		s.logger.Error("failed to convert markdown", "error", err)
		return template.HTMLEscapeString(text)
	}
	return buf.String()
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errors.New("invalid JSON body")
}

// writeSSEEvent writes a single SSE event to the response writer.
func (s *Server) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal SSE data", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", dataJSON)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
