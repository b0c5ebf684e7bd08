package teamstore

// Ack records that ackedBy has acknowledged messageID, idempotently
// (spec.md 4.7). It emits acked on the first successful ack and
// ack_duplicate on a repeat; a repeat by a different agent than the
// first acker is reported back to the caller but never overwrites the
// record.
func (s *Store) Ack(team, messageID, ackedBy, traceID string) (AckRecord, error) {
	if _, err := validateIdentifier("team", team); err != nil {
		return AckRecord{}, err
	}
	if _, err := validateIdentifier("agent", ackedBy); err != nil {
		return AckRecord{}, err
	}
	if !s.teamExists(team) {
		return AckRecord{}, ErrBootstrap
	}
	if _, ok, err := s.lookupMessage(team, messageID); err != nil {
		return AckRecord{}, err
	} else if !ok {
		return AckRecord{}, ErrNotFound
	}

	rec, isNew, err := s.recordAck(team, AckRecord{
		MessageID: messageID,
		AckedBy:   ackedBy,
		AckedAt:   nowRFC3339(),
		TraceID:   traceID,
	})
	if err != nil {
		return AckRecord{}, err
	}
	if isNew {
		_ = s.logEvent(team, Event{
			Kind:      EventAcked,
			SubjectID: messageID,
			TraceID:   traceID,
			Attrs:     map[string]any{"acked_by": ackedBy},
		})
	} else {
		_ = s.logEvent(team, Event{
			Kind:      EventAckDuplicate,
			SubjectID: messageID,
			TraceID:   traceID,
			Attrs:     map[string]any{"acked_by": ackedBy, "original_acker": rec.AckedBy},
		})
	}
	return rec, nil
}
