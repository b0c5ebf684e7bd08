package teamstore

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaVersion is the only envelope/event schema version this module
// understands (spec.md 3, 6).
const SchemaVersion = 1

// Known message types (spec.md 3: "one of the enumerated message types").
// This set is carried forward from the original team-chat protocol
// (original_source/team-chat/scripts/protocol.py MESSAGE_TYPES).
var MessageTypes = map[string]bool{
	"task_assign":              true,
	"task_update":              true,
	"idle_notification":        true,
	"handoff":                  true,
	"decision_required":        true,
	"shutdown_request":         true,
	"shutdown_approved":        true,
	"agent_wakeup_required":    true,
	"agent_shutdown_required":  true,
	"agent_started":            true,
	"agent_stopped":            true,
	"agent_error":              true,
	"agent_timeout":            true,
}

// Event kinds known to the core. Not an exhaustive validation set (the
// spec allows "etc."). This package emits all of them except ack_rejected
// and malformed_skipped, which are declared but never written.
const (
	EventSent              = "sent"
	EventDuplicate         = "message_duplicate"
	EventRead              = "read"
	EventAcked             = "acked"
	EventAckDuplicate      = "ack_duplicate"
	EventAckRejected       = "ack_rejected"
	EventRetryScheduled    = "retry_scheduled"
	EventDeadLettered      = "dead_lettered"
	EventRehydrated        = "rehydrated"
	EventMalformedSkipped  = "malformed_skipped"
	EventNudgeSuppressed   = "nudge_suppressed"
)

const envelopeSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["id", "type", "from", "to", "payload", "created_at", "schema_version"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"type": {"type": "string", "minLength": 1},
		"from": {"type": "string", "minLength": 1},
		"to": {"type": "string", "minLength": 1},
		"payload": {"type": "object"},
		"created_at": {"type": "string", "minLength": 1},
		"schema_version": {"type": "integer"},
		"task_id": {"type": "string"},
		"trace_id": {"type": "string"},
		"priority": {"type": "integer"},
		"require_ack": {"type": "boolean"},
		"cooldown_key": {"type": "string"},
		"cooldown_seconds": {"type": "integer"}
	}
}`

var envelopeSchema = mustCompileSchema("envelope.json", envelopeSchemaJSON)

func mustCompileSchema(name, schemaJSON string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("teamstore: invalid embedded schema %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("teamstore: add schema resource %s: %v", name, err))
	}
	schema, err := c.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("teamstore: compile schema %s: %v", name, err))
	}
	return schema
}

// Envelope is the wire/storage representation of a message (spec.md 3).
// Optional fields use omitempty so writers never emit null for an absent
// field (spec.md 6).
type Envelope struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	From            string         `json:"from"`
	To              string         `json:"to"`
	Payload         map[string]any `json:"payload"`
	CreatedAt       string         `json:"created_at"`
	SchemaVersion   int            `json:"schema_version"`
	TaskID          string         `json:"task_id,omitempty"`
	TraceID         string         `json:"trace_id,omitempty"`
	Priority        int            `json:"priority,omitempty"`
	RequireAck      bool           `json:"require_ack,omitempty"`
	CooldownKey     string         `json:"cooldown_key,omitempty"`
	CooldownSeconds int            `json:"cooldown_seconds,omitempty"`
}

// Event is an operational log record (spec.md 3).
type Event struct {
	ID        string         `json:"id"`
	Ts        string         `json:"ts"`
	Kind      string         `json:"kind"`
	SubjectID string         `json:"subject_id,omitempty"`
	TraceID   string         `json:"trace_id,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// TaskSnapshot is the derived, monotonically-merged state of a task
// (spec.md 3, 4.11).
type TaskSnapshot struct {
	TaskID                 string `json:"task_id"`
	Status                 string `json:"status,omitempty"`
	Subject                string `json:"subject,omitempty"`
	Details                string `json:"details,omitempty"`
	Assignee               string `json:"assignee,omitempty"`
	Reporter               string `json:"reporter,omitempty"`
	TraceID                string `json:"trace_id,omitempty"`
	HistorySummary         string `json:"history_summary,omitempty"`
	SnapshotVersion        int    `json:"snapshot_version"`
	LastMessageID          string `json:"last_message_id"`
	LastMessageCreatedAt   string `json:"last_message_created_at"`
	SnapshotConflictPolicy string `json:"snapshot_conflict_policy"`
}

const snapshotConflictPolicy = "created_at_then_message_id_monotonic"

// AckRecord is one entry of the ack index (spec.md 3, 4.7).
type AckRecord struct {
	MessageID string `json:"message_id"`
	AckedBy   string `json:"acked_by"`
	AckedAt   string `json:"acked_at"`
	TraceID   string `json:"trace_id,omitempty"`
}

// DeadLetterRecord is appended to dead-letter/<day>.jsonl when delivery
// exhausts its retry budget (spec.md 3, 4.12).
type DeadLetterRecord struct {
	OriginalEnvelope Envelope             `json:"original_envelope"`
	Attempts         int                  `json:"attempts"`
	AttemptHistory   []DeliveryAttempt    `json:"attempt_history,omitempty"`
	LastError        string               `json:"last_error"`
	TerminatedAt     string               `json:"terminated_at"`
}

// DeliveryAttempt records one retry cycle for the dead-letter history.
type DeliveryAttempt struct {
	Attempt   int    `json:"attempt"`
	At        string `json:"at"`
	NudgeID   string `json:"nudge_id,omitempty"`
}

// MessageLocator is the value type stored in the message index
// (spec.md 4.5).
type MessageLocator struct {
	Inbox     string `json:"inbox"`
	Offset    int64  `json:"offset"`
	LineNo    int    `json:"line"`
	Digest    string `json:"digest,omitempty"`
	To        string `json:"to"`
	CreatedAt string `json:"created_at"`
}

// EventLocator is the value type stored in the event index (spec.md 4.6).
type EventLocator struct {
	File      string `json:"file"`
	Offset    int64  `json:"offset"`
	LineNo    int    `json:"line"`
	CreatedAt string `json:"created_at"`
}

// NewMessageID mints a message id when the caller has not supplied one.
func NewMessageID() string {
	return "msg_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// NewEventID mints an event id when the caller has not supplied one.
func NewEventID() string {
	return "evt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// NewDeadLetterID mints an id for a dead-letter record.
func NewDeadLetterID() string {
	return "dlq_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// validateEnvelope enforces spec.md 4.9 step 1: JSON Schema validity, plus
// the checks the schema cannot express (schema_version pinned to 1, type
// in the known enum, created_at parseable as RFC 3339).
func validateEnvelope(env Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return &SchemaError{Reason: err.Error()}
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return &SchemaError{Reason: err.Error()}
	}
	if err := envelopeSchema.Validate(doc); err != nil {
		return &SchemaError{Reason: err.Error()}
	}
	if env.SchemaVersion != SchemaVersion {
		return &SchemaError{Reason: fmt.Sprintf("unsupported schema_version: %d", env.SchemaVersion)}
	}
	if !MessageTypes[env.Type] {
		return ErrUnknownType
	}
	if _, err := parseRFC3339UTC(env.CreatedAt); err != nil {
		return &SchemaError{Reason: "created_at is not RFC3339: " + err.Error()}
	}
	return nil
}
