package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// SchemaVersion is stamped on every envelope and bumped when a field
// changes meaning.
const SchemaVersion = 1

// Event is the JSON body of every message this service emits. Key is the
// partition key: the order number for orders, the lead id for leads.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Key           string          `json:"key"`
	Entity        string          `json:"entity"`
	SchemaVersion int             `json:"schema_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	VisitorID     string          `json:"visitor_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// Option adjusts an Event while it is built.
type Option func(*Event)

// WithCorrelationID tags the event with the request that caused it.
// Empty ids are ignored.
func WithCorrelationID(id string) Option {
	return func(e *Event) {
		if id != "" {
			e.CorrelationID = id
		}
	}
}

// WithVisitorID records the anonymous visitor behind the event.
func WithVisitorID(id string) Option {
	return func(e *Event) {
		if id != "" {
			e.VisitorID = id
		}
	}
}

// NewEvent marshals data into a fresh envelope.
func NewEvent(eventType, key, entity, source string, data any, opts ...Option) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	e := &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Key:           key,
		Entity:        entity,
		SchemaVersion: SchemaVersion,
		OccurredAt:    time.Now().UTC(),
		Source:        source,
		Data:          raw,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Message renders the envelope as a kafka message for topic. Routing
// fields are repeated as headers so consumers can filter without parsing
// the body.
func (e *Event) Message(topic string) (kafka.Message, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s envelope: %w", e.Type, err)
	}

	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(e.Type)},
		{Key: "source", Value: []byte(e.Source)},
		{Key: "schema_version", Value: []byte(strconv.Itoa(e.SchemaVersion))},
	}
	if e.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation_id", Value: []byte(e.CorrelationID)})
	}
	if e.VisitorID != "" {
		headers = append(headers, kafka.Header{Key: "visitor_id", Value: []byte(e.VisitorID)})
	}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(e.Key),
		Value:   body,
		Headers: headers,
	}, nil
}

// DecodeMessage parses the envelope in msg and, when data is non-nil,
// its payload.
func DecodeMessage(msg kafka.Message, data any) (*Event, error) {
	var e Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if e.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("envelope schema %d is newer than %d", e.SchemaVersion, SchemaVersion)
	}
	if data != nil {
		if err := json.Unmarshal(e.Data, data); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", e.Type, err)
		}
	}
	return &e, nil
}
