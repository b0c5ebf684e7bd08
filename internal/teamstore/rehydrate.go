package teamstore

import "sort"

// RehydrateReport summarizes one rehydrate run for CLI output.
type RehydrateReport struct {
	MessagesIndexed int
	EventsIndexed   int
	TasksRebuilt    int
	AcksRebuilt     int
	MalformedLines  int
}

// Rehydrate rebuilds every derived index and snapshot from the append-only
// logs, deterministically, per spec.md 4.14. It never rewrites the
// inbox/event/dead-letter log files; apart from appending one rehydrated
// event at the end, it writes only state/ (including the index shard
// directories) and tasks/.
func (s *Store) Rehydrate(team string) (RehydrateReport, error) {
	if _, err := validateIdentifier("team", team); err != nil {
		return RehydrateReport{}, err
	}
	if !s.teamExists(team) {
		return RehydrateReport{}, ErrBootstrap
	}
	var report RehydrateReport

	err := s.withLock(team, ResourceStateRehydrate, func() error {
		messageShards := map[string]messageIndexShard{}
		eventShards := map[string]eventIndexShard{}
		ackIdx := map[string]AckRecord{}
		taskMessages := map[string][]Envelope{}

		agents, err := readDirNames(s.inboxesDir(team))
		if err != nil {
			return err
		}
		for _, name := range agents {
			agent := trimJSONLSuffix(name)
			if agent == "" {
				continue
			}
			records, hits, err := readJSONL(s.inboxPath(team, agent))
			if err != nil {
				return err
			}
			report.MalformedLines += len(hits)
			for _, h := range hits {
				if _, err := s.recordMalformed(team, "inboxes/"+agent+".jsonl", h); err != nil {
					return err
				}
			}
			for _, r := range records {
				env := decodeEnvelope(r.Object)
				if env.ID == "" {
					continue
				}
				shard := shardKey(env.ID)
				if messageShards[shard] == nil {
					messageShards[shard] = messageIndexShard{}
				}
				messageShards[shard][env.ID] = MessageLocator{
					Inbox:     agent + ".jsonl",
					Offset:    r.Offset,
					LineNo:    r.LineNumber,
					Digest:    envelopeDigest(env),
					To:        agent,
					CreatedAt: env.CreatedAt,
				}
				report.MessagesIndexed++

				if env.TaskID != "" && (env.Type == "task_assign" || env.Type == "task_update") {
					taskMessages[env.TaskID] = append(taskMessages[env.TaskID], env)
				}
			}
		}

		days, err := s.listEventDays(team)
		if err != nil {
			return err
		}
		for _, day := range days {
			path := s.eventLogPath(team, day)
			records, hits, err := readJSONL(path)
			if err != nil {
				return err
			}
			report.MalformedLines += len(hits)
			for _, h := range hits {
				if _, err := s.recordMalformed(team, "events/"+day+".jsonl", h); err != nil {
					return err
				}
			}
			for _, r := range records {
				ev := decodeEvent(r.Object)
				if ev.ID == "" {
					continue
				}
				shard := shardKey(ev.ID)
				if eventShards[shard] == nil {
					eventShards[shard] = eventIndexShard{}
				}
				eventShards[shard][ev.ID] = EventLocator{
					File:      day + ".jsonl",
					Offset:    r.Offset,
					LineNo:    r.LineNumber,
					CreatedAt: ev.Ts,
				}
				report.EventsIndexed++

				if ev.Kind == EventAcked {
					ackedBy, _ := ev.Attrs["acked_by"].(string)
					if _, exists := ackIdx[ev.SubjectID]; !exists {
						ackIdx[ev.SubjectID] = AckRecord{
							MessageID: ev.SubjectID,
							AckedBy:   ackedBy,
							AckedAt:   ev.Ts,
							TraceID:   ev.TraceID,
						}
						report.AcksRebuilt++
					}
				}
			}
		}

		if err := s.replaceAllMessageShards(team, messageShards); err != nil {
			return err
		}
		if err := s.replaceAllEventShards(team, eventShards); err != nil {
			return err
		}
		if err := s.replaceAckIndex(team, ackIdx); err != nil {
			return err
		}

		// Rebuild task snapshots from scratch: for each task, every
		// task_assign/task_update message is folded in ascending ordering-key
		// order with the same strictly-greater rule and field merge that
		// ApplyTaskMessage uses, so fields set by earlier messages survive.
		if err := clearDir(s.tasksDir(team)); err != nil {
			return err
		}
		for taskID, msgs := range taskMessages {
			sort.Slice(msgs, func(i, j int) bool {
				return orderingKeyLess(msgs[i].CreatedAt, msgs[i].ID, msgs[j].CreatedAt, msgs[j].ID)
			})
			var snap TaskSnapshot
			snap.TaskID = taskID
			for _, env := range msgs {
				if snap.LastMessageID != "" && !orderingKeyLess(snap.LastMessageCreatedAt, snap.LastMessageID, env.CreatedAt, env.ID) {
					continue
				}
				applyTaskFields(&snap, env)
				snap.SnapshotVersion++
				snap.LastMessageID = env.ID
				snap.LastMessageCreatedAt = env.CreatedAt
			}
			snap.SnapshotConflictPolicy = snapshotConflictPolicy
			if err := writeJSONAtomic(s.taskSnapshotPath(team, taskID), snap); err != nil {
				return err
			}
			report.TasksRebuilt++
		}

		return nil
	})
	if err != nil {
		return report, err
	}

	_ = s.logEvent(team, Event{
		Kind: EventRehydrated,
		Attrs: map[string]any{
			"messages_indexed": report.MessagesIndexed,
			"events_indexed":   report.EventsIndexed,
			"tasks_rebuilt":    report.TasksRebuilt,
		},
	})
	return report, nil
}

func trimJSONLSuffix(name string) string {
	const suffix = ".jsonl"
	if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
		return name[:len(name)-len(suffix)]
	}
	return ""
}
