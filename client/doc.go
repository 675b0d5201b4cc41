// Package client implements the HTTP request pipeline every ParseFlow API
// call flows through: default headers, request encoding, failure
// classification, and retry with exponential backoff.
//
// Retries
//   - Controlled via Config.MaxAttempts (total attempts, default 3).
//   - Retries occur on:
//   - Transport errors (network failures, timeouts)
//   - HTTP 429 (the server explicitly invites a retry)
//   - HTTP 500, 502, 503, 504
//   - All other 4xx/5xx responses are surfaced immediately.
//
// Backoff Strategy
//   - After the Nth failed attempt the pipeline sleeps 2^N seconds before
//     attempt N+1, so a call capped at 3 attempts sleeps 2s then 4s.
//   - Sleeps are interruptible: cancelling the context ends the call at the
//     next checkpoint without issuing further network activity.
//
// Errors
//   - Every failure is a *Error carrying a Kind from the taxonomy in
//     errors.go. Callers branch with IsKind or errors.As.
//
// Notes
//   - Request bodies are encoded once per logical call and replayed on each
//     attempt by rebuilding the http.Request.
//   - The attempt index is local to one logical call; concurrent calls on a
//     shared client never interfere.
package client
