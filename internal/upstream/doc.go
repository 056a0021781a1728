// Package upstream is the HTTP client for the job service.
//
// This is the fetch boundary: every transport or parse failure is converted
// to a structured error kind here, so raw errors never reach the state
// machine or the gateway. Idempotent GETs retry on transient failures, and
// a circuit breaker sheds load when the service is down. Authorization
// rejections are mapped to their kind but not acted on - routing them into
// the state machine is the caller's job.
package upstream
