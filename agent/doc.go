// Package agent contains the specialist workers that each produce one
// fragment of a trip plan, the registry that holds them behind a uniform
// execute contract, and the orchestrator that drives the two-phase execution
// graph over them.
//
// Phase 1 fans independent workers out concurrently and joins all results;
// Phase 2 runs dependent workers sequentially in declared order over the
// settled fragment map. A worker failure is captured as that worker's result
// and never aborts sibling workers or the run: total failure is an all-error
// result map, not an error.
package agent
