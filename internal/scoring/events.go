package scoring

import (
	"encoding/json"
	"time"
)

// EventType discriminates entries in the match event log.
// Point is the only type today; the field is kept so the serialized log stays
// forward compatible when new event kinds appear.
type EventType string

const EventPoint EventType = "point"

// Snapshot is the score of both sides immediately after an event.
type Snapshot struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Event is one atomic change to a match. The snapshot embedded in event i
// equals the cumulative point tally of events 0..i.
type Event struct {
	Type      EventType `json:"type"`
	PlayerID  int64     `json:"playerId"`
	Timestamp int64     `json:"timestamp"` // unix millis
	Snapshot  Snapshot  `json:"scoreSnapshot"`
}

// NewPointEvent builds a point event stamped with the given wall-clock time.
func NewPointEvent(playerID int64, at time.Time, after Snapshot) Event {
	return Event{
		Type:      EventPoint,
		PlayerID:  playerID,
		Timestamp: at.UnixMilli(),
		Snapshot:  after,
	}
}

// EventLog is the ordered, append-only history of one match. It is the sole
// replay source for score reconstruction and undo.
type EventLog struct {
	events []Event
}

// Append adds an event at the end of the log.
func (l *EventLog) Append(e Event) {
	l.events = append(l.events, e)
}

// PopLast removes and returns the most recent event. The second return value
// is false when the log is empty.
func (l *EventLog) PopLast() (Event, bool) {
	if len(l.events) == 0 {
		return Event{}, false
	}
	last := l.events[len(l.events)-1]
	l.events = l.events[:len(l.events)-1]
	return last, true
}

// Len reports how many events the log holds.
func (l *EventLog) Len() int { return len(l.events) }

// Events returns the log in occurrence order. The returned slice is a copy;
// mutating it does not affect the log.
func (l *EventLog) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// MarshalJSON serializes the log as a plain JSON array of events.
func (l EventLog) MarshalJSON() ([]byte, error) {
	if l.events == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.events)
}

// UnmarshalJSON restores the log from its serialized array form.
func (l *EventLog) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &l.events)
}

// DecodeEventLog parses the serialized history of a match. A missing or
// corrupt document yields an empty log rather than an error, so a bad row
// never makes the match unreadable.
func DecodeEventLog(raw []byte) EventLog {
	var l EventLog
	if len(raw) == 0 {
		return l
	}
	if err := json.Unmarshal(raw, &l); err != nil {
		return EventLog{}
	}
	return l
}

// EncodeEventLog serializes the log for storage.
func EncodeEventLog(l EventLog) ([]byte, error) {
	return json.Marshal(l)
}
