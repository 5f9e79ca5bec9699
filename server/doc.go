// Package server exposes the planner over HTTP and WebSocket: a small REST
// surface for plan creation, external events and health, plus the per-trip
// session channel at /ws/{tripID} speaking the realtime message protocol.
package server
