// Package answer is the HTTP client for the remote FAQ answering service.
//
// The service speaks JSON over two POST endpoints:
//
//	POST /ask   {"query": "..."}                  -> [{"Question": "...", "Answer": "..."}, ...]
//	POST /data  {"pageNumber": 1, "perPage": 10}  -> {"items": [...], "page", "perPage", "totalRecords"}
//
// Client.Ask satisfies conversation.AnswerService. Any non-2xx status,
// transport failure, timeout, or body of the wrong shape is an error; the
// controller turns all of them into the same error notice.
package answer
