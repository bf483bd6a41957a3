// ABOUTME: ConversationController owns the widget's transcript, draft, suggestions and request state
// ABOUTME: Synchronous transitions plus one asynchronous completion per single-flight query

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNoSuggestions is returned when resolving while nothing is pending.
	ErrNoSuggestions = errors.New("no suggestions pending")
	// ErrUnknownSuggestion is returned when the suggestion is not in the pending list.
	ErrUnknownSuggestion = errors.New("suggestion not pending")
)

// AnswerService is what the controller needs from the remote FAQ service.
// Any returned error is treated as a failed request.
type AnswerService interface {
	Ask(ctx context.Context, query string) ([]Suggestion, error)
}

// Publisher receives controller events. EventBroadcaster implements it.
// Publish is called with the controller lock held and must not block.
type Publisher interface {
	Publish(event *Event)
}

// Controller is the widget's conversation state machine. All methods are
// safe for concurrent use; transitions are serialized by an internal lock
// and the request completion takes the same lock.
type Controller struct {
	service AnswerService
	texts   Texts
	logger  *slog.Logger
	events  Publisher
	timeout time.Duration
	base    context.Context

	mu          sync.Mutex
	transcript  []Message
	lastSeq     int
	draft       string
	suggestions []Suggestion
	state       RequestState
	visible     bool
	inflight    chan struct{} // closed when the outstanding request settles
}

// NewController creates an open widget whose transcript holds the welcome
// message. Empty fields in texts fall back to DefaultTexts.
func NewController(service AnswerService, texts Texts, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		service: service,
		texts:   texts.withDefaults(),
		logger:  logger.With("component", "conversation"),
		state:   StateIdle,
		visible: true,
		base:    context.Background(),
	}
	c.appendLocked(SenderBot, c.texts.Welcome)
	return c
}

// SetBroadcaster configures where transition events are published.
func (c *Controller) SetBroadcaster(p Publisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = p
}

// SetTimeout bounds each request to the answer service. Zero disables the
// bound and leaves timeouts to the transport.
func (c *Controller) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = d
}

// SetBaseContext sets the parent context of every request. Cancelling it
// fails outstanding requests; it is meant for process shutdown.
func (c *Controller) SetBaseContext(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = ctx
}

// UpdateDraft replaces the draft input. It is refused while suggestions are
// pending and reports whether the draft was changed.
func (c *Controller) UpdateDraft(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.suggestions) > 0 {
		return false
	}
	c.draft = text
	c.publishLocked(EventDraft, nil)
	return true
}

// Submit sends the trimmed draft as a query. It is a no-op returning false
// when the draft is blank, a request is outstanding, or suggestions are
// pending. On acceptance the user message is appended and the draft cleared
// before the request starts; the result arrives asynchronously.
func (c *Controller) Submit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	query := strings.TrimSpace(c.draft)
	if query == "" || c.state != StateIdle || len(c.suggestions) > 0 {
		return false
	}

	c.draft = ""
	c.state = StateAwaiting
	msg := c.appendLocked(SenderUser, query)
	c.publishLocked(EventState, nil)

	done := make(chan struct{})
	c.inflight = done
	timeout := c.timeout
	base := c.base

	c.logger.Debug("query submitted",
		"sequence", msg.Sequence,
		"query_len", len(query))

	go c.await(base, query, timeout, done)
	return true
}

// ResolveSuggestion answers with one of the pending suggestions: the list is
// cleared, then the question is echoed as the user and the answer appended
// as the bot.
func (c *Controller) ResolveSuggestion(s Suggestion) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.suggestions) == 0 {
		return ErrNoSuggestions
	}
	for _, pending := range c.suggestions {
		if pending == s {
			c.resolveLocked(s)
			return nil
		}
	}
	return ErrUnknownSuggestion
}

// ResolveSuggestionAt resolves the pending suggestion at index.
func (c *Controller) ResolveSuggestionAt(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.suggestions) == 0 {
		return ErrNoSuggestions
	}
	if index < 0 || index >= len(c.suggestions) {
		return fmt.Errorf("%w: index %d of %d", ErrUnknownSuggestion, index, len(c.suggestions))
	}
	c.resolveLocked(c.suggestions[index])
	return nil
}

// Open shows the widget. Opening a closed widget appends a new welcome
// message; earlier history is kept.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.visible {
		return
	}
	c.visible = true
	c.publishLocked(EventVisibility, nil)
	c.appendLocked(SenderBot, c.texts.Welcome)
}

// Close hides the widget. An outstanding request keeps running and its
// result still lands in the transcript.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.visible {
		return
	}
	c.visible = false
	c.publishLocked(EventVisibility, nil)
}

// Wait blocks until no request is outstanding or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.inflight
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Transcript returns a copy of the conversation so far.
func (c *Controller) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.transcript...)
}

// Snapshot returns a detached copy of the full controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Transcript:   append([]Message(nil), c.transcript...),
		Draft:        c.draft,
		Suggestions:  append([]Suggestion{}, c.suggestions...),
		State:        c.state,
		Visible:      c.visible,
		InputEnabled: c.inputEnabledLocked(),
	}
}

// await runs one request to completion. The completion is applied exactly
// once whatever the service does, so the widget can never stay disabled.
func (c *Controller) await(base context.Context, query string, timeout time.Duration, done chan struct{}) {
	defer close(done)

	results, err := c.ask(base, query, timeout)
	c.onServiceResult(results, err)
}

func (c *Controller) ask(ctx context.Context, query string, timeout time.Duration) (results []Suggestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("answer service panicked: %v", r)
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return c.service.Ask(ctx, query)
}

// onServiceResult settles the outstanding request.
func (c *Controller) onServiceResult(results []Suggestion, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateIdle
	c.inflight = nil

	switch {
	case err != nil:
		c.logger.Warn("answer service failed", "error", err)
		c.publishLocked(EventState, nil)
		c.appendLocked(SenderBot, c.texts.ErrorNotice)
	case IsNoMatch(results):
		c.logger.Debug("no relevant answer", "results", len(results))
		c.publishLocked(EventState, nil)
		c.appendLocked(SenderBot, c.texts.NoMatch)
	default:
		c.logger.Debug("suggestions pending", "count", len(results))
		c.suggestions = append([]Suggestion(nil), results...)
		c.publishLocked(EventState, nil)
		c.publishLocked(EventSuggestions, nil)
	}
}

func (c *Controller) resolveLocked(s Suggestion) {
	c.suggestions = nil
	c.publishLocked(EventSuggestions, nil)
	c.appendLocked(SenderUser, s.Question)
	c.appendLocked(SenderBot, s.Answer)
}

// appendLocked adds a message to the transcript. Must be called with mu held.
func (c *Controller) appendLocked(sender Sender, text string) Message {
	c.lastSeq++
	msg := Message{Sender: sender, Text: text, Sequence: c.lastSeq}
	c.transcript = append(c.transcript, msg)
	c.publishLocked(EventMessage, &msg)
	return msg
}

func (c *Controller) inputEnabledLocked() bool {
	return c.state == StateIdle && len(c.suggestions) == 0
}

// publishLocked emits an event describing the current state. Must be called with mu held.
func (c *Controller) publishLocked(typ EventType, msg *Message) {
	if c.events == nil {
		return
	}
	c.events.Publish(&Event{
		Type:         typ,
		Message:      msg,
		Suggestions:  append([]Suggestion{}, c.suggestions...),
		State:        c.state,
		Draft:        c.draft,
		Visible:      c.visible,
		InputEnabled: c.inputEnabledLocked(),
	})
}
