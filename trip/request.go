package trip

import (
	"errors"
	"strconv"
	"strings"
)

// PlanRequest captures everything the planner needs to produce a trip plan.
// It is an immutable value from the orchestrator's point of view; replanning
// derives a fresh request rather than mutating a stored one.
type PlanRequest struct {
	TripID      string `json:"trip_id,omitempty"`
	Destination string `json:"destination"`
	Origin      string `json:"origin,omitempty"`

	StartDate    string `json:"start_date,omitempty"` // RFC 3339 date
	EndDate      string `json:"end_date,omitempty"`
	DurationDays int    `json:"duration_days"`

	Travelers int     `json:"travelers,omitempty"`
	Budget    float64 `json:"budget,omitempty"`
	Currency  string  `json:"currency,omitempty"`

	Interests          []string `json:"interests,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	AccessibilityNeeds []string `json:"accessibility_needs,omitempty"`
	AdditionalInfo     string   `json:"additional_info,omitempty"`

	IncludeAudioTour bool `json:"include_audio_tour,omitempty"`
	RealtimeUpdates  bool `json:"realtime_updates,omitempty"`
}

// ErrMissingDestination is returned by Validate when no destination is set.
var ErrMissingDestination = errors.New("trip: destination is required")

// Validate checks caller-supplied fields and normalizes defaults.
// Malformed caller input is the only failure allowed to surface as a hard
// error at the system boundary.
func (r *PlanRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return ErrMissingDestination
	}
	if r.DurationDays <= 0 {
		r.DurationDays = 1
	}
	if r.Travelers <= 0 {
		r.Travelers = 1
	}
	if r.Currency == "" {
		r.Currency = "USD"
	}
	return nil
}

// DurationDaysLabel renders the trip length as human readable text.
func (r PlanRequest) DurationDaysLabel() string {
	if r.DurationDays == 1 {
		return "1-day"
	}
	return strconv.Itoa(r.DurationDays) + "-day"
}

// ReplanEvent describes an external condition change that invalidates parts
// of an existing plan (weather, closure, delay).
type ReplanEvent struct {
	Trigger      string            `json:"trigger"` // weather, closure, delay, ...
	Details      map[string]string `json:"details,omitempty"`
	AffectedDate string            `json:"affected_date,omitempty"`
}

// Describe renders the event as prompt-ready text for seeding a replan request.
func (e ReplanEvent) Describe() string {
	var b strings.Builder
	b.WriteString("Replanning triggered by ")
	if e.Trigger == "" {
		b.WriteString("an external event")
	} else {
		b.WriteString(e.Trigger)
	}
	if e.AffectedDate != "" {
		b.WriteString(" affecting " + e.AffectedDate)
	}
	for k, v := range e.Details {
		b.WriteString("; " + k + ": " + v)
	}
	b.WriteString(".")
	return b.String()
}
