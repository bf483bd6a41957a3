// Package conversation implements the FAQ widget's conversation state machine.
//
// # Overview
//
// A Controller owns everything that changes while a user talks to the
// widget: the append-only transcript, the unsent draft, the list of pending
// suggestions, and whether a query is outstanding. Presentation layers (the
// web widget, the terminal client) call its operations and render its
// snapshots or events; they never mutate state themselves.
//
//	ctrl := conversation.NewController(answerClient, conversation.Texts{}, logger)
//	ctrl.UpdateDraft("library hours")
//	ctrl.Submit()
//
// # Request Lifecycle
//
// Submit is single-flight:
//
//  1. The trimmed draft is appended as a user message and the draft cleared
//  2. State moves to awaiting and the query goes to the AnswerService
//  3. The completion moves state back to idle and appends exactly one
//     outcome: a bot reply, a pending suggestion list, or an error notice
//
// While a query is outstanding or suggestions are pending, Submit is a
// no-op. Suggestions are resolved with ResolveSuggestion, which echoes the
// chosen question and appends its answer.
//
// # Outcomes
//
// The answer service returns a list of question/answer pairs:
//
//   - Failure (transport, status, timeout, panic): error notice
//   - Empty list or the single "no relevant answer" entry: no-match reply
//   - Anything else, including one genuine entry: pending suggestions
//
// # Events
//
// Every transition is published to an optional EventBroadcaster:
//
//	b := conversation.NewEventBroadcaster(logger)
//	ctrl.SetBroadcaster(b)
//	events, _ := b.Subscribe(ctx)
//
// Event types: message, suggestions, state, draft, visibility. Each event
// carries the control state as it stands after the transition.
package conversation
