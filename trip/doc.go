// Package trip defines the request and response shapes of the travel planner.
//
// A PlanRequest enters the orchestrator, each specialist worker contributes a
// typed Fragment, and Assemble folds the fragment map into a complete Plan.
// Fragments are tagged variants rather than free maps so that dependent
// workers get compile-time checked access to the upstream fields they read;
// TextFragment is the explicit untyped fallback for content that could not be
// parsed into a richer shape.
package trip
