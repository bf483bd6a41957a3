// ABOUTME: Line-oriented terminal front end for the FAQ widget
// ABOUTME: Reads commands and questions from a reader and prints the transcript with colour

package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/faq-widget/internal/answer"
	"github.com/2389/faq-widget/internal/conversation"
)

const faqPageSize = 10

// Browser lists the FAQ catalogue page by page. answer.Client implements it.
type Browser interface {
	Browse(ctx context.Context, page, perPage int) (*answer.Page, error)
}

// Options configures a Session.
type Options struct {
	// SuggestionPrompt introduces pending suggestions.
	SuggestionPrompt string
	// Color enables ANSI colours in the output.
	Color bool
}

// Session drives one controller from a line-based input stream.
type Session struct {
	controller *conversation.Controller
	faqs       Browser
	in         io.Reader
	out        io.Writer
	prompt     string
	logger     *slog.Logger

	user *color.Color
	bot  *color.Color
	hint *color.Color
	bad  *color.Color
	item *color.Color

	lastShown int // highest transcript sequence already printed
}

// NewSession creates a session. faqs may be nil, which disables /faqs.
func NewSession(controller *conversation.Controller, faqs Browser, in io.Reader, out io.Writer, opts Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SuggestionPrompt == "" {
		opts.SuggestionPrompt = "Did you mean one of these?"
	}

	s := &Session{
		controller: controller,
		faqs:       faqs,
		in:         in,
		out:        out,
		prompt:     opts.SuggestionPrompt,
		logger:     logger.With("component", "terminal"),
		user:       color.New(color.FgBlue, color.Bold),
		bot:        color.New(color.FgGreen),
		hint:       color.New(color.FgHiBlack),
		bad:        color.New(color.FgRed),
		item:       color.New(color.FgCyan),
	}
	if !opts.Color {
		for _, c := range []*color.Color{s.user, s.bot, s.hint, s.bad, s.item} {
			c.DisableColor()
		}
	}
	return s
}

// Run processes input until EOF, /quit, or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			readErr <- err
			return
		}
		readErr <- io.EOF
	}()

	s.hint.Fprintln(s.out, "Type a question and press Enter. /help for commands.")
	s.render()

	for {
		s.printPrompt()

		var line string
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case line = <-lines:
		}

		quit, err := s.handleLine(ctx, strings.TrimSpace(line))
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// handleLine processes one input line and reports whether to stop.
func (s *Session) handleLine(ctx context.Context, line string) (bool, error) {
	if line == "" {
		return false, nil
	}

	if strings.HasPrefix(line, "/") {
		return s.handleCommand(ctx, line)
	}

	snap := s.controller.Snapshot()
	switch {
	case !snap.Visible:
		s.hint.Fprintln(s.out, "The widget is closed. Type /open to reopen it.")
	case len(snap.Suggestions) > 0:
		s.pick(line, len(snap.Suggestions))
	default:
		if err := s.ask(ctx, line); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (s *Session) handleCommand(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit", "/q":
		return true, nil
	case "/help":
		s.printHelp()
	case "/faqs":
		s.listFAQs(ctx, arg)
	case "/close":
		s.controller.Close()
		s.hint.Fprintln(s.out, "Widget closed. Type /open to reopen it.")
	case "/open":
		s.controller.Open()
		s.render()
	default:
		s.bad.Fprintf(s.out, "Unknown command %s. Type /help for commands.\n", cmd)
	}
	return false, nil
}

// ask submits text and blocks until the answer has been applied.
func (s *Session) ask(ctx context.Context, text string) error {
	if !s.controller.UpdateDraft(text) || !s.controller.Submit() {
		s.hint.Fprintln(s.out, "Input is disabled right now.")
		return nil
	}
	s.lastShownThrough()

	s.hint.Fprintln(s.out, "Looking that up...")
	if err := s.controller.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("waiting for answer: %w", err)
	}
	s.render()
	return nil
}

// pick resolves the suggestion numbered by line.
func (s *Session) pick(line string, count int) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > count {
		s.hint.Fprintf(s.out, "Pick a suggestion by number (1-%d).\n", count)
		return
	}

	if err := s.controller.ResolveSuggestionAt(n - 1); err != nil {
		s.logger.Warn("failed to resolve suggestion", "index", n-1, "error", err)
		s.bad.Fprintf(s.out, "[error] %v\n", err)
		return
	}
	s.render()
}

func (s *Session) listFAQs(ctx context.Context, arg string) {
	if s.faqs == nil {
		s.hint.Fprintln(s.out, "FAQ browsing is not available.")
		return
	}

	page := 1
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			s.bad.Fprintln(s.out, "Usage: /faqs [page]")
			return
		}
		page = n
	}

	result, err := s.faqs.Browse(ctx, page, faqPageSize)
	if err != nil {
		s.logger.Warn("failed to browse FAQs", "page", page, "error", err)
		s.bad.Fprintf(s.out, "[error] %v\n", err)
		return
	}

	if len(result.Items) == 0 {
		s.hint.Fprintln(s.out, "No FAQs on that page.")
		return
	}

	pages := 1
	if result.PerPage > 0 {
		pages = max((result.TotalRecords+result.PerPage-1)/result.PerPage, 1)
	}
	s.hint.Fprintf(s.out, "FAQs page %d of %d (%d total):\n", result.Page, pages, result.TotalRecords)
	for i, faq := range result.Items {
		number := (result.Page-1)*result.PerPage + i + 1
		s.item.Fprintf(s.out, "  %d. ", number)
		fmt.Fprintln(s.out, faq.Question)
	}
}

// render prints transcript messages not shown yet, then any pending
// suggestions.
func (s *Session) render() {
	snap := s.controller.Snapshot()

	for _, m := range snap.Transcript {
		if m.Sequence <= s.lastShown {
			continue
		}
		s.printMessage(m)
		s.lastShown = m.Sequence
	}

	if len(snap.Suggestions) > 0 {
		s.hint.Fprintln(s.out, s.prompt)
		for i, sug := range snap.Suggestions {
			s.item.Fprintf(s.out, "  %d. ", i+1)
			fmt.Fprintln(s.out, sug.Question)
		}
	}
}

// lastShownThrough marks the user's own message as shown, since it was
// just typed.
func (s *Session) lastShownThrough() {
	transcript := s.controller.Transcript()
	for _, m := range transcript {
		if m.Sender == conversation.SenderUser && m.Sequence > s.lastShown {
			s.lastShown = m.Sequence
		}
	}
}

func (s *Session) printMessage(m conversation.Message) {
	if m.Sender == conversation.SenderUser {
		s.user.Fprint(s.out, "you> ")
	} else {
		s.bot.Fprint(s.out, "bot> ")
	}
	fmt.Fprintln(s.out, m.Text)
}

func (s *Session) printPrompt() {
	if len(s.controller.Snapshot().Suggestions) > 0 {
		fmt.Fprint(s.out, "# ")
		return
	}
	fmt.Fprint(s.out, "> ")
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  /faqs [page]   Browse the FAQ catalogue")
	fmt.Fprintln(s.out, "  /close         Close the widget")
	fmt.Fprintln(s.out, "  /open          Reopen the widget")
	fmt.Fprintln(s.out, "  /help          Show this help")
	fmt.Fprintln(s.out, "  /quit          Exit")
	fmt.Fprintln(s.out, "While suggestions are shown, type a number to pick one.")
}
