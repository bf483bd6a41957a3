// Package webwidget serves the FAQ chat widget to browsers.
//
// # Routes
//
//	GET  /                        embedded widget page
//	GET  /api/state               full widget state as JSON
//	POST /api/draft               {"text": "..."}; 409 while suggestions are pending
//	POST /api/submit              {"text"?: "...", "idempotency_key"?: "..."}
//	POST /api/suggestions/{index} pick a pending suggestion
//	POST /api/open                show the widget
//	POST /api/close               hide the widget
//	GET  /api/events              Server-Sent Events of controller transitions
//
// Submit answers 202 when the query was sent, 409 when input is disabled and
// 400 when the query is blank. A repeated idempotency key is acknowledged
// with {"status":"duplicate"} and does not reach the controller.
//
// Message text is rendered to HTML with goldmark; raw HTML in a message is
// dropped rather than passed through.
package webwidget
