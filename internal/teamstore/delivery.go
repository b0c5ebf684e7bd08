package teamstore

import "time"

// deliveryPolicy resolves retry parameters per message type (spec.md
// 4.12). task_assign and decision_required get a slower, more patient
// schedule than the rest of the ack-required types.
type deliveryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
	AckTimeout  time.Duration
}

func policyFor(messageType string) deliveryPolicy {
	switch messageType {
	case "task_assign", "decision_required":
		return deliveryPolicy{MaxAttempts: 5, BaseDelay: 30 * time.Second, Factor: 2, AckTimeout: 10 * time.Minute}
	default:
		return deliveryPolicy{MaxAttempts: 3, BaseDelay: 10 * time.Second, Factor: 2, AckTimeout: 5 * time.Minute}
	}
}

func (p deliveryPolicy) delayForAttempt(attempts int) time.Duration {
	delay := float64(p.BaseDelay)
	for i := 0; i < attempts; i++ {
		delay *= p.Factor
	}
	return time.Duration(delay)
}

// deliveryEntry is the reconstructed in-flight state for one require_ack
// message. It exists only in memory: per spec.md's open question, this
// module reconstructs delivery-guard state from events (sent,
// retry_scheduled, acked, dead_lettered) rather than keeping an
// authoritative state/delivery-guard.json, which removes the need for a
// dedicated lock and keeps the guard trivially consistent with rehydrate.
type deliveryEntry struct {
	MessageID     string
	Envelope      Envelope
	Attempts      int
	FirstSentAt   time.Time
	NextAttemptAt time.Time
	History       []DeliveryAttempt
}

// reconstructPending replays every event for team and rebuilds the set of
// require_ack messages that are neither acked nor dead-lettered. The first
// send time is the envelope's created_at, and each retry is timed by the
// tick time recorded in its retry_scheduled event, so a schedule driven
// through Tick with caller-supplied times stays on that clock.
func (s *Store) reconstructPending(team string) (map[string]*deliveryEntry, error) {
	days, err := s.listEventDays(team)
	if err != nil {
		return nil, err
	}
	pending := map[string]*deliveryEntry{}
	settled := map[string]bool{}

	for _, day := range days {
		events, err := s.readEventDay(team, day)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			switch ev.Kind {
			case EventSent:
				requireAck, _ := ev.Attrs["require_ack"].(bool)
				if !requireAck || ev.SubjectID == "" {
					continue
				}
				env, ok, err := s.loadEnvelopeByID(team, ev.SubjectID)
				if err != nil || !ok {
					continue
				}
				sentAt, err := parseRFC3339UTC(env.CreatedAt)
				if err != nil {
					sentAt, _ = parseRFC3339UTC(ev.Ts)
				}
				pending[ev.SubjectID] = &deliveryEntry{
					MessageID:     ev.SubjectID,
					Envelope:      env,
					Attempts:      0,
					FirstSentAt:   sentAt,
					NextAttemptAt: sentAt.Add(s.resolvePolicy(team, env.Type).delayForAttempt(0)),
				}
			case EventRetryScheduled:
				entry, ok := pending[ev.SubjectID]
				if !ok {
					continue
				}
				entry.Attempts++
				atTs := ev.Ts
				if v, ok := ev.Attrs["at"].(string); ok && v != "" {
					atTs = v
				}
				at, _ := parseRFC3339UTC(atTs)
				entry.NextAttemptAt = at.Add(s.resolvePolicy(team, entry.Envelope.Type).delayForAttempt(entry.Attempts))
				entry.History = append(entry.History, DeliveryAttempt{Attempt: entry.Attempts, At: atTs})
			case EventAcked, EventDeadLettered:
				settled[ev.SubjectID] = true
			}
		}
	}
	for id := range settled {
		delete(pending, id)
	}
	return pending, nil
}

// loadEnvelopeByID resolves a message id to its stored envelope via the
// message index, falling back to nothing on a miss (the eventual-
// consistency contract of spec.md 9 means a caller here should tolerate
// absence rather than treat it as fatal).
func (s *Store) loadEnvelopeByID(team, id string) (Envelope, bool, error) {
	loc, ok, err := s.lookupMessage(team, id)
	if err != nil {
		return Envelope{}, false, err
	}
	if !ok {
		return Envelope{}, false, nil
	}
	obj, ok := readRecordAtOffset(s.inboxPath(team, loc.To), loc.Offset)
	if !ok {
		return Envelope{}, false, nil
	}
	return decodeEnvelope(obj), true, nil
}

// Tick runs one delivery-guard sweep (spec.md 4.12). now is supplied by
// the caller so the guard's wall-clock semantics stay externally driven
// and independently testable, matching spec.md 9's design choice to avoid
// a blocking internal sleep loop.
func (s *Store) Tick(team string, now time.Time) error {
	if !s.teamExists(team) {
		return ErrBootstrap
	}
	pending, err := s.reconstructPending(team)
	if err != nil {
		return err
	}
	for _, entry := range pending {
		if now.Before(entry.NextAttemptAt) {
			continue
		}
		policy := s.resolvePolicy(team, entry.Envelope.Type)
		exhausted := entry.Attempts >= policy.MaxAttempts
		timedOut := now.Sub(entry.FirstSentAt) > policy.AckTimeout
		if exhausted || timedOut {
			if err := s.deadLetter(team, entry, timedOut); err != nil {
				return err
			}
			continue
		}
		if err := s.retryNudge(team, entry, now); err != nil {
			return err
		}
	}
	return nil
}

// retryNudge re-enqueues a nudge envelope for entry, addressed to the same
// recipient, and emits retry_scheduled (spec.md 4.12 step 2).
func (s *Store) retryNudge(team string, entry *deliveryEntry, now time.Time) error {
	nudge := entry.Envelope
	nudge.ID = NewMessageID()
	nudge.CreatedAt = now.UTC().Format(time.RFC3339)
	nudge.RequireAck = false

	if _, _, err := s.Send(team, nudge); err != nil {
		return err
	}
	return s.logEvent(team, Event{
		Kind:      EventRetryScheduled,
		SubjectID: entry.MessageID,
		TraceID:   entry.Envelope.TraceID,
		Attrs: map[string]any{
			"attempt":  entry.Attempts + 1,
			"nudge_id": nudge.ID,
			"at":       nudge.CreatedAt,
		},
	})
}

// deadLetter terminates delivery of entry: appends the original envelope
// plus attempt history to dead-letter/<day>.jsonl under dead-letter.lock
// and emits dead_lettered (spec.md 4.12 step 3).
func (s *Store) deadLetter(team string, entry *deliveryEntry, timedOut bool) error {
	reason := "max_attempts exceeded"
	if timedOut {
		reason = "ack_timeout exceeded"
	}
	rec := DeadLetterRecord{
		OriginalEnvelope: entry.Envelope,
		Attempts:         entry.Attempts,
		AttemptHistory:   entry.History,
		LastError:        reason,
		TerminatedAt:     nowRFC3339(),
	}
	day := dayOf(rec.TerminatedAt)
	if err := s.withLock(team, ResourceDeadLetter, func() error {
		_, err := appendJSONL(s.deadLetterPath(team, day), rec)
		return err
	}); err != nil {
		return err
	}
	return s.logEvent(team, Event{
		Kind:      EventDeadLettered,
		SubjectID: entry.MessageID,
		TraceID:   entry.Envelope.TraceID,
		Attrs: map[string]any{
			"reason":   reason,
			"attempts": entry.Attempts,
		},
	})
}
