// Package dedupe remembers idempotency keys for a bounded time so that a
// retried widget submission is acknowledged without being processed twice.
package dedupe
