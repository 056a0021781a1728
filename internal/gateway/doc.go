// Package gateway is the HTTP surface over the session core. It exposes the
// auth, session, and job endpoints, enforces the capability gate on
// protected routes, and streams session snapshots over WebSocket so clients
// observe forced logouts without polling.
package gateway
