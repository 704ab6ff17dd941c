package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventLoaderCall   EventType = "loader_call"
	EventLoaderReturn EventType = "loader_return"
	EventPersonalize  EventType = "personalize"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// LoaderEvent describes one loader invocation during props aggregation.
type LoaderEvent struct {
	EventBase
	UID           string        `json:"uid"`
	ComponentName string        `json:"component_name"`
	Kind          string        `json:"kind"`
	Duration      time.Duration `json:"duration,omitempty"`
	IsError       bool          `json:"is_error,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// PersonalizeOutcome is the fate of a rendering carrying experiences.
type PersonalizeOutcome string

const (
	OutcomeKept     PersonalizeOutcome = "kept"
	OutcomeReplaced PersonalizeOutcome = "replaced"
	OutcomeHidden   PersonalizeOutcome = "hidden"
)

// PersonalizeEvent describes the decision taken for one rendering with experiences.
type PersonalizeEvent struct {
	EventBase
	Segment       string             `json:"segment"`
	UID           string             `json:"uid,omitempty"`
	ComponentName string             `json:"component_name,omitempty"`
	Outcome       PersonalizeOutcome `json:"outcome"`
}

// LifecycleHooks defines callbacks for engine observability.
// Loader hooks may be called from several goroutines at once.
type LifecycleHooks struct {
	OnLoaderCall   func(context.Context, *LoaderEvent)
	OnLoaderReturn func(context.Context, *LoaderEvent)
	OnPersonalize  func(*PersonalizeEvent)
}
