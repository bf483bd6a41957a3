// Package terminal runs the FAQ widget in a terminal. Each input line is
// either a command (/help, /faqs [page], /close, /open, /quit), a question,
// or, while suggestions are listed, the number of the suggestion to pick.
package terminal
