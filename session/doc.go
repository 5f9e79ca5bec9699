// Package session stores per-trip planning state: the originating request,
// the latest assembled plan and the monitoring flag. The Store interface is
// the domain contract; InMemoryStore is the volatile implementation used by
// the server and the tests. Additional backends (Redis, Postgres) can be
// added without changing any calling code.
package session
