package teamstore

// ReadOptions controls the paginated inbox read of spec.md 4.15.
type ReadOptions struct {
	Unread bool
	Limit  int
	Cursor string
}

// ReadResult carries one page of envelopes plus a cursor to resume from.
type ReadResult struct {
	Envelopes  []Envelope
	NextCursor string
}

// Read streams agent's inbox newest-first, applying cursor and unread
// filters, and yields up to opts.Limit envelopes (spec.md 4.15). Each
// yielded envelope logs a read event.
func (s *Store) Read(team, agent string, opts ReadOptions) (ReadResult, error) {
	if _, err := validateIdentifier("team", team); err != nil {
		return ReadResult{}, err
	}
	if _, err := validateIdentifier("agent", agent); err != nil {
		return ReadResult{}, err
	}
	if !s.teamExists(team) {
		return ReadResult{}, ErrBootstrap
	}
	records, err := s.readInboxRecords(team, agent)
	if err != nil {
		return ReadResult{}, err
	}

	var ackIdx map[string]AckRecord
	if opts.Unread {
		ackIdx, err = s.loadAckIndex(team)
		if err != nil {
			return ReadResult{}, err
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	skipping := opts.Cursor != ""
	var out []Envelope
	var nextCursor string

	for i := len(records) - 1; i >= 0; i-- {
		env := decodeEnvelope(records[i].Object)
		if skipping {
			if env.ID == opts.Cursor {
				skipping = false
			}
			continue
		}
		if opts.Unread {
			if _, acked := ackIdx[env.ID]; acked {
				continue
			}
		}
		if len(out) == limit {
			nextCursor = out[len(out)-1].ID
			break
		}
		out = append(out, env)
	}

	if opts.Cursor != "" && skipping {
		return ReadResult{}, ErrInvalidCursor
	}

	for _, env := range out {
		_ = s.logEvent(team, Event{Kind: EventRead, SubjectID: env.ID, TraceID: env.TraceID, Attrs: map[string]any{"agent": agent}})
	}

	return ReadResult{Envelopes: out, NextCursor: nextCursor}, nil
}

// TraceOptions controls the paginated event trace of spec.md 4.15.
type TraceOptions struct {
	Limit  int
	Cursor string
}

// TraceResult carries one page of events plus a cursor to resume from.
type TraceResult struct {
	Events     []Event
	NextCursor string
}

// Trace mirrors Read over events for one trace_id, in chronological order
// across every day-file (spec.md 4.15). Limit <= 0 means unbounded.
func (s *Store) Trace(team, traceID string, opts TraceOptions) (TraceResult, error) {
	if _, err := validateIdentifier("team", team); err != nil {
		return TraceResult{}, err
	}
	if !s.teamExists(team) {
		return TraceResult{}, ErrBootstrap
	}
	days, err := s.listEventDays(team)
	if err != nil {
		return TraceResult{}, err
	}

	var matched []Event
	for _, day := range days {
		events, err := s.readEventDay(team, day)
		if err != nil {
			return TraceResult{}, err
		}
		for _, ev := range events {
			if ev.TraceID == traceID {
				matched = append(matched, ev)
			}
		}
	}

	skipping := opts.Cursor != ""
	var out []Event
	var nextCursor string
	for _, ev := range matched {
		if skipping {
			if ev.ID == opts.Cursor {
				skipping = false
			}
			continue
		}
		if opts.Limit > 0 && len(out) == opts.Limit {
			nextCursor = out[len(out)-1].ID
			break
		}
		out = append(out, ev)
	}
	if opts.Cursor != "" && skipping {
		return TraceResult{}, ErrInvalidCursor
	}
	return TraceResult{Events: out, NextCursor: nextCursor}, nil
}
