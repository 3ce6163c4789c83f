// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. "Event" here is the tournament's domain event, not the
// sporting event; the latter is always called a contest in event names.
const (
	EventTournamentReady   EventType = "tournament.ready"
	EventContestFinished   EventType = "contest.finished"
	EventPredictionChecked EventType = "contest.prediction_checked"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for logging.
	Payload() map[string]interface{}
}

// BaseEvent carries the fields every event shares. CorrelationID is the run
// the event belongs to.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

func newBaseEvent(eventType EventType, aggregateID, runID string) BaseEvent {
	return BaseEvent{
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
		AggregateId:   aggregateID,
		CorrelationID: runID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Tournament Events
// ═══════════════════════════════════════════════════════════════════════════

// TournamentReadyEvent is emitted once every contest roster has been built.
type TournamentReadyEvent struct {
	BaseEvent
	RunID    string   `json:"run_id"`
	Contests []string `json:"contests"`
	Athletes int      `json:"athletes"`
}

// Payload implements Event interface.
func (e TournamentReadyEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"run_id":   e.RunID,
		"contests": e.Contests,
		"athletes": e.Athletes,
	}
}

// NewTournamentReadyEvent creates a new TournamentReadyEvent.
func NewTournamentReadyEvent(runID string, contests []string, athletes int) TournamentReadyEvent {
	return TournamentReadyEvent{
		BaseEvent: newBaseEvent(EventTournamentReady, runID, runID),
		RunID:     runID,
		Contests:  contests,
		Athletes:  athletes,
	}
}

// FinishedResult is one row of a finished contest, detached from the
// competitor object so it can travel through the bus and be stored.
type FinishedResult struct {
	Position  int     `json:"position"`
	AthleteID int     `json:"athlete_id"`
	Label     string  `json:"label"`
	Time      float64 `json:"time"`
	Rank      int     `json:"rank"`
	Points    int     `json:"points"`
}

// ContestFinishedEvent is emitted after a contest has been resolved.
type ContestFinishedEvent struct {
	BaseEvent
	RunID     string           `json:"run_id"`
	ContestID string           `json:"contest_id"`
	Kind      string           `json:"kind"`
	Referee   string           `json:"referee"`
	Results   []FinishedResult `json:"results"`
}

// Payload implements Event interface.
func (e ContestFinishedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"run_id":     e.RunID,
		"contest_id": e.ContestID,
		"kind":       e.Kind,
		"referee":    e.Referee,
		"results":    e.Results,
	}
}

// NewContestFinishedEvent creates a new ContestFinishedEvent.
func NewContestFinishedEvent(runID, contestID, kind, referee string, results []FinishedResult) ContestFinishedEvent {
	return ContestFinishedEvent{
		BaseEvent: newBaseEvent(EventContestFinished, contestID, runID),
		RunID:     runID,
		ContestID: contestID,
		Kind:      kind,
		Referee:   referee,
		Results:   results,
	}
}

// PredictionCheckedEvent is emitted when an operator's winner prediction is evaluated.
type PredictionCheckedEvent struct {
	BaseEvent
	RunID     string `json:"run_id"`
	ContestID string `json:"contest_id"`
	Predicted string `json:"predicted"`
	Correct   bool   `json:"correct"`
}

// Payload implements Event interface.
func (e PredictionCheckedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"run_id":     e.RunID,
		"contest_id": e.ContestID,
		"predicted":  e.Predicted,
		"correct":    e.Correct,
	}
}

// NewPredictionCheckedEvent creates a new PredictionCheckedEvent.
func NewPredictionCheckedEvent(runID, contestID, predicted string, correct bool) PredictionCheckedEvent {
	return PredictionCheckedEvent{
		BaseEvent: newBaseEvent(EventPredictionChecked, contestID, runID),
		RunID:     runID,
		ContestID: contestID,
		Predicted: predicted,
		Correct:   correct,
	}
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
