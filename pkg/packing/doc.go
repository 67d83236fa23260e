// Package packing provides the HTTP client for the external packing service.
//
// The viewer never computes placements itself; it submits a [Request] to the
// service's pack endpoint and receives a placement result, which the client
// converts into a [document.Document] ready for scene synchronization.
// Responses are cached by request payload hash so repeated invocations with
// identical inputs avoid the network entirely.
//
// Transient failures (network errors, 5xx responses) are retried with
// exponential backoff via [httputil.Retry]. Client errors are surfaced
// immediately with a structured error code.
package packing
