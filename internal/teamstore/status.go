package teamstore

import "time"

// StatusReport is the payload for `status <team>` (spec.md 6, enriched per
// SPEC_FULL.md 4 with staleness detection carried over from
// service.py.status's stale_minutes window).
type StatusReport struct {
	Team           string   `json:"team"`
	Members        []string `json:"members"`
	MessagesTotal  int      `json:"messages_total"`
	UnreadTotal    int      `json:"unread_total"`
	AckedTotal     int      `json:"acked_total"`
	TasksTotal     int      `json:"tasks_total"`
	DeadLettered   int      `json:"dead_lettered_total"`
	StaleMinutes   int      `json:"stale_minutes"`
	StaleTasks     []string `json:"stale_tasks"`
	StaleMessages  []string `json:"stale_messages"`
}

// Status aggregates counters across every agent's inbox and every task
// snapshot for team, and flags tasks whose last applied message, and
// unacked messages whose created_at, is older than staleMinutes.
func (s *Store) Status(team string, staleMinutes int) (StatusReport, error) {
	if _, err := validateIdentifier("team", team); err != nil {
		return StatusReport{}, err
	}
	if !s.teamExists(team) {
		return StatusReport{}, ErrBootstrap
	}
	meta, err := s.LoadTeamMeta(team)
	if err != nil {
		return StatusReport{}, err
	}
	report := StatusReport{Team: team, Members: meta.Members, StaleMinutes: staleMinutes}

	ackIdx, err := s.loadAckIndex(team)
	if err != nil {
		return StatusReport{}, err
	}
	report.AckedTotal = len(ackIdx)

	now := time.Now().UTC()
	staleCutoff := now.Add(-time.Duration(staleMinutes) * time.Minute)

	agents, err := readDirNames(s.inboxesDir(team))
	if err != nil {
		return StatusReport{}, err
	}
	for _, name := range agents {
		agent := trimJSONLSuffix(name)
		if agent == "" {
			continue
		}
		records, _, err := readJSONL(s.inboxPath(team, agent))
		if err != nil {
			return StatusReport{}, err
		}
		for _, r := range records {
			env := decodeEnvelope(r.Object)
			report.MessagesTotal++
			if _, acked := ackIdx[env.ID]; !acked {
				report.UnreadTotal++
				if createdAt, err := parseRFC3339UTC(env.CreatedAt); err == nil && createdAt.Before(staleCutoff) {
					report.StaleMessages = append(report.StaleMessages, env.ID)
				}
			}
		}
	}

	taskIDs, err := s.listTaskIDs(team)
	if err != nil {
		return StatusReport{}, err
	}
	report.TasksTotal = len(taskIDs)
	for _, taskID := range taskIDs {
		snap, ok, err := s.LoadTaskSnapshot(team, taskID)
		if err != nil {
			return StatusReport{}, err
		}
		if !ok {
			continue
		}
		if createdAt, err := parseRFC3339UTC(snap.LastMessageCreatedAt); err == nil && createdAt.Before(staleCutoff) {
			report.StaleTasks = append(report.StaleTasks, taskID)
		}
	}

	days, err := s.listEventDays(team)
	if err != nil {
		return StatusReport{}, err
	}
	for _, day := range days {
		events, err := s.readEventDay(team, day)
		if err != nil {
			return StatusReport{}, err
		}
		for _, ev := range events {
			if ev.Kind == EventDeadLettered {
				report.DeadLettered++
			}
		}
	}

	return report, nil
}
