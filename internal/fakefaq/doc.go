// Package fakefaq is a stand-in for the remote FAQ answering service.
//
// POST /ask {"query": "..."} answers from a YAML fixture. A query listed under
// the fixture's queries (compared trimmed and case-insensitive) returns its
// canned result. Otherwise up to three catalogue questions sharing enough
// content words with the query are returned, best first. When nothing matches
// the response is [{"Answer":"Sorry, no relevant answer found."}]. A blank
// query gets 400 {"error":"Empty query"}.
//
// POST /data {"pageNumber": n, "perPage": m} pages over the catalogue and
// returns {"items", "page", "perPage", "totalRecords"}.
package fakefaq
