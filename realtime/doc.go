// Package realtime implements the per-session update channel: the Hub keeps
// at most one live notification handle per session under a bounded global
// pool, the Monitor runs one cancellable background check loop per monitored
// session, and the Replanner bridges inbound events into a fresh orchestrator
// run for the affected session.
//
// The package is transport-agnostic: anything satisfying Handle can
// subscribe. The server package adapts gorilla/websocket connections onto it.
package realtime
