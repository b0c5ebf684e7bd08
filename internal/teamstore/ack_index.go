package teamstore

// loadAckIndex reads the full ack index. Missing file reads as empty.
func (s *Store) loadAckIndex(team string) (map[string]AckRecord, error) {
	var idx map[string]AckRecord
	if err := readJSON(s.ackIndexPath(team), &idx); err != nil {
		return nil, err
	}
	if idx == nil {
		idx = map[string]AckRecord{}
	}
	return idx, nil
}

// lookupAck reports whether messageID has been acked, and by whom.
func (s *Store) lookupAck(team, messageID string) (AckRecord, bool, error) {
	idx, err := s.loadAckIndex(team)
	if err != nil {
		return AckRecord{}, false, err
	}
	rec, ok := idx[messageID]
	return rec, ok, nil
}

// recordAck installs rec under acks.lock, first-writer-wins: if messageID
// is already present the existing record is returned unchanged and the
// call is treated as success (spec.md 4.7).
func (s *Store) recordAck(team string, rec AckRecord) (AckRecord, bool, error) {
	var stored AckRecord
	isNew := false
	err := s.withLock(team, ResourceAcks, func() error {
		idx, err := s.loadAckIndex(team)
		if err != nil {
			return err
		}
		if existing, ok := idx[rec.MessageID]; ok {
			stored = existing
			return nil
		}
		idx[rec.MessageID] = rec
		stored = rec
		isNew = true
		return writeJSONAtomic(s.ackIndexPath(team), idx)
	})
	return stored, isNew, err
}

// replaceAckIndex is used only by rehydrate, which rebuilds the ack index
// from the union of ack events (spec.md 4.14 step 4).
func (s *Store) replaceAckIndex(team string, idx map[string]AckRecord) error {
	return writeJSONAtomic(s.ackIndexPath(team), idx)
}
