package teamstore

import (
	"encoding/json"
	"os"
)

// Send implements the inbox writer pipeline of spec.md 4.9. It returns the
// stored envelope (with any server-assigned id/created_at filled in) and
// whether the send was suppressed (duplicate or cooldown), in which case
// the caller still observes success per the idempotency contract.
func (s *Store) Send(team string, env Envelope) (Envelope, bool, error) {
	if _, err := validateIdentifier("team", team); err != nil {
		return env, false, err
	}
	if !s.teamExists(team) {
		return env, false, ErrBootstrap
	}
	if _, err := validateIdentifier("agent", env.From); err != nil {
		return env, false, err
	}
	if _, err := validateIdentifier("agent", env.To); err != nil {
		return env, false, err
	}
	if env.TaskID != "" {
		if _, err := validateIdentifier("task_id", env.TaskID); err != nil {
			return env, false, err
		}
	}
	if env.ID == "" {
		env.ID = NewMessageID()
	}
	if env.CreatedAt == "" {
		env.CreatedAt = nowRFC3339()
	}
	if env.SchemaVersion == 0 {
		env.SchemaVersion = SchemaVersion
	}
	if env.Payload == nil {
		env.Payload = map[string]any{}
	}
	if err := validateEnvelope(env); err != nil {
		return env, false, err
	}

	if env.CooldownKey != "" {
		suppressed, err := s.checkAndMarkCooldown(team, env.To, env.CooldownKey, env.CooldownSeconds)
		if err != nil {
			return env, false, err
		}
		if suppressed {
			_ = s.logEvent(team, Event{
				Kind:      EventNudgeSuppressed,
				SubjectID: env.ID,
				TraceID:   env.TraceID,
				Attrs: map[string]any{
					"to":           env.To,
					"cooldown_key": env.CooldownKey,
				},
			})
			return env, true, nil
		}
	}

	duplicate := false
	err := s.withLock(team, ResourceMessages, func() error {
		dup, err := s.hasMessage(team, env.ID)
		if err != nil {
			return err
		}
		if dup {
			duplicate = true
			return nil
		}
		path := s.inboxPath(team, env.To)
		offset, err := appendJSONL(path, env)
		if err != nil {
			return err
		}
		digest := envelopeDigest(env)
		return s.putMessage(team, env.ID, MessageLocator{
			Inbox:     env.To + ".jsonl",
			Offset:    offset,
			LineNo:    -1,
			Digest:    digest,
			To:        env.To,
			CreatedAt: env.CreatedAt,
		})
	})
	if err != nil {
		return env, false, err
	}

	if duplicate {
		_ = s.logEvent(team, Event{
			Kind:      EventDuplicate,
			SubjectID: env.ID,
			TraceID:   env.TraceID,
		})
		return env, true, nil
	}

	_ = s.logEvent(team, Event{
		Kind:      EventSent,
		SubjectID: env.ID,
		TraceID:   env.TraceID,
		Attrs: map[string]any{
			"to":          env.To,
			"from":        env.From,
			"type":        env.Type,
			"require_ack": env.RequireAck,
			"task_id":     env.TaskID,
		},
	})

	if env.Type == "task_assign" || env.Type == "task_update" {
		if err := s.ApplyTaskMessage(team, env); err != nil {
			return env, false, err
		}
	}

	return env, false, nil
}

// envelopeDigest is a content fingerprint stored in each message locator
// (spec.md 9's open question, resolved yes: store a digest). Nothing in
// this package reads it back; doctor check does not compare digests.
// encoding/json marshals struct fields in declaration order and map keys
// sorted lexicographically, so this is stable across processes.
func envelopeDigest(env Envelope) string {
	raw, err := json.Marshal(env)
	if err != nil {
		return ""
	}
	return sha256Hex(raw)
}

// InboxSize returns the current byte length of agent's inbox file, used by
// `read --follow` to start tailing from the end of the page already shown.
func (s *Store) InboxSize(team, agent string) int64 {
	info, err := os.Stat(s.inboxPath(team, agent))
	if err != nil {
		return 0
	}
	return info.Size()
}

// readInboxRecords returns every record currently stored in agent's inbox,
// oldest first, tolerating malformed lines (spec.md 4.4).
func (s *Store) readInboxRecords(team, agent string) ([]jsonlRecord, error) {
	path := s.inboxPath(team, agent)
	records, hits, err := readJSONL(path)
	if err != nil {
		return nil, err
	}
	relPath := "inboxes/" + agent + ".jsonl"
	for _, h := range hits {
		if _, err := s.recordMalformed(team, relPath, h); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func decodeEnvelope(obj map[string]any) Envelope {
	env := Envelope{}
	if v, ok := obj["id"].(string); ok {
		env.ID = v
	}
	if v, ok := obj["type"].(string); ok {
		env.Type = v
	}
	if v, ok := obj["from"].(string); ok {
		env.From = v
	}
	if v, ok := obj["to"].(string); ok {
		env.To = v
	}
	if v, ok := obj["payload"].(map[string]any); ok {
		env.Payload = v
	}
	if v, ok := obj["created_at"].(string); ok {
		env.CreatedAt = v
	}
	if v, ok := obj["schema_version"].(float64); ok {
		env.SchemaVersion = int(v)
	}
	if v, ok := obj["task_id"].(string); ok {
		env.TaskID = v
	}
	if v, ok := obj["trace_id"].(string); ok {
		env.TraceID = v
	}
	if v, ok := obj["priority"].(float64); ok {
		env.Priority = int(v)
	}
	if v, ok := obj["require_ack"].(bool); ok {
		env.RequireAck = v
	}
	if v, ok := obj["cooldown_key"].(string); ok {
		env.CooldownKey = v
	}
	if v, ok := obj["cooldown_seconds"].(float64); ok {
		env.CooldownSeconds = int(v)
	}
	return env
}
