package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ANALYSIS_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent carries the common fields for concrete events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Topic published on the in-process bus and relayed to NATS.
const TopicAnalysisCompleted = "contract.analysis.completed"

// NewAnalysisCompleted builds the event emitted after a full contract
// analysis run.
func NewAnalysisCompleted(runID, persona string, clauseCount, failureCount int) Event {
	return BaseEvent{
		Type: "ANALYSIS_COMPLETED",
		Data: map[string]interface{}{
			"run_id":        runID,
			"persona":       persona,
			"clause_count":  clauseCount,
			"failure_count": failureCount,
		},
		OccurredAt: time.Now().UTC(),
	}
}
