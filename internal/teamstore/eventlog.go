package teamstore

import (
	"strings"
)

// dayOf extracts the UTC calendar day (YYYY-MM-DD) from an RFC 3339
// timestamp, used to route events into events/<day>.jsonl (spec.md 4.10).
func dayOf(ts string) string {
	t, err := parseRFC3339UTC(ts)
	if err != nil {
		if len(ts) >= 10 {
			return ts[:10]
		}
		return "unknown-day"
	}
	return t.Format("2006-01-02")
}

// logEvent implements spec.md 4.10: compute the day, acquire events.lock,
// dedupe on event_id, append, update the event index, release.
func (s *Store) logEvent(team string, ev Event) error {
	if ev.ID == "" {
		ev.ID = NewEventID()
	}
	if ev.Ts == "" {
		ev.Ts = nowRFC3339()
	}
	day := dayOf(ev.Ts)
	path := s.eventLogPath(team, day)
	return s.withLock(team, ResourceEvents, func() error {
		dup, err := s.hasEvent(team, ev.ID)
		if err != nil {
			return err
		}
		if dup {
			return nil
		}
		offset, err := appendJSONL(path, ev)
		if err != nil {
			return err
		}
		return s.putEvent(team, ev.ID, EventLocator{
			File:      day + ".jsonl",
			Offset:    offset,
			LineNo:    -1,
			CreatedAt: ev.Ts,
		})
	})
}

// readEventDay reads one day's event log, tolerating malformed lines
// (spec.md 4.4) and recording their fingerprints.
func (s *Store) readEventDay(team, day string) ([]Event, error) {
	path := s.eventLogPath(team, day)
	records, hits, err := readJSONL(path)
	if err != nil {
		return nil, err
	}
	relPath := "events/" + day + ".jsonl"
	for _, h := range hits {
		if _, err := s.recordMalformed(team, relPath, h); err != nil {
			return nil, err
		}
	}
	out := make([]Event, 0, len(records))
	for _, r := range records {
		out = append(out, decodeEvent(r.Object))
	}
	return out, nil
}

// listEventDays enumerates the events/*.jsonl files for a team, sorted
// ascending, as day strings (YYYY-MM-DD).
func (s *Store) listEventDays(team string) ([]string, error) {
	entries, err := readDirNames(s.eventsDir(team))
	if err != nil {
		return nil, err
	}
	var days []string
	for _, name := range entries {
		if strings.HasSuffix(name, ".jsonl") {
			days = append(days, strings.TrimSuffix(name, ".jsonl"))
		}
	}
	return days, nil
}

func decodeEvent(obj map[string]any) Event {
	ev := Event{}
	if v, ok := obj["id"].(string); ok {
		ev.ID = v
	}
	if v, ok := obj["ts"].(string); ok {
		ev.Ts = v
	}
	if v, ok := obj["kind"].(string); ok {
		ev.Kind = v
	}
	if v, ok := obj["subject_id"].(string); ok {
		ev.SubjectID = v
	}
	if v, ok := obj["trace_id"].(string); ok {
		ev.TraceID = v
	}
	if v, ok := obj["attrs"].(map[string]any); ok {
		ev.Attrs = v
	}
	return ev
}
