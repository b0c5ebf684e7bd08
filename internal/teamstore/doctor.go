package teamstore

import (
	"os"
	"strconv"
	"strings"
)

// DoctorCheckResult is one named diagnostic, modeled on the original
// CLI's cmd_doctor_check output shape (checks / overall_status /
// recommendations), which spec.md 6 cites as a command but never designs
// a payload for.
type DoctorCheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok" or "fail"
	Detail  string `json:"detail,omitempty"`
}

// DoctorReport is the full `doctor check <team>` payload.
type DoctorReport struct {
	Team            string              `json:"team"`
	Checks          []DoctorCheckResult `json:"checks"`
	OverallStatus   string              `json:"overall_status"`
	Recommendations []string            `json:"recommendations,omitempty"`
}

// DoctorCheck runs a read-only consistency report: malformed-line
// diagnostics, an index/log cross-check (the same check rehydrate
// performs, without rewriting anything), and ack-index referential
// integrity.
func (s *Store) DoctorCheck(team string) (DoctorReport, error) {
	if _, err := validateIdentifier("team", team); err != nil {
		return DoctorReport{}, err
	}
	if !s.teamExists(team) {
		return DoctorReport{}, ErrBootstrap
	}
	report := DoctorReport{Team: team, OverallStatus: "ok"}

	malformed, err := s.loadMalformedDiagnostics(team)
	if err != nil {
		return DoctorReport{}, err
	}
	if len(malformed) == 0 {
		report.Checks = append(report.Checks, DoctorCheckResult{Name: "malformed_lines", Status: "ok"})
	} else {
		report.Checks = append(report.Checks, DoctorCheckResult{
			Name: "malformed_lines", Status: "fail",
			Detail: strconv.Itoa(len(malformed)) + " distinct malformed line(s) recorded",
		})
		report.Recommendations = append(report.Recommendations, "run rehydrate; malformed lines are skipped, not repaired")
	}

	logMessages, indexed, missing, orphaned, err := s.crossCheckMessageIndex(team)
	if err != nil {
		return DoctorReport{}, err
	}
	if len(missing) == 0 && len(orphaned) == 0 {
		report.Checks = append(report.Checks, DoctorCheckResult{
			Name: "message_index_consistency", Status: "ok",
			Detail: strconv.Itoa(logMessages) + " log message(s), " + strconv.Itoa(indexed) + " indexed",
		})
	} else {
		report.Checks = append(report.Checks, DoctorCheckResult{
			Name: "message_index_consistency", Status: "fail",
			Detail: strconv.Itoa(len(missing)) + " unindexed, " + strconv.Itoa(len(orphaned)) + " index entries with no log record",
		})
		report.Recommendations = append(report.Recommendations, "run rehydrate to reconcile the message index with the inbox logs")
	}

	report.Checks = append(report.Checks, s.checkLegacyIndexMigration(team))

	danglingAcks, err := s.crossCheckAckIndex(team)
	if err != nil {
		return DoctorReport{}, err
	}
	if len(danglingAcks) == 0 {
		report.Checks = append(report.Checks, DoctorCheckResult{Name: "ack_index_referential_integrity", Status: "ok"})
	} else {
		report.Checks = append(report.Checks, DoctorCheckResult{
			Name: "ack_index_referential_integrity", Status: "fail",
			Detail: strconv.Itoa(len(danglingAcks)) + " ack(s) reference a message absent from the index",
		})
		report.Recommendations = append(report.Recommendations, "run rehydrate; a dangling ack usually means the source message was never indexed")
	}

	for _, c := range report.Checks {
		if c.Status != "ok" {
			report.OverallStatus = "fail"
			break
		}
	}
	return report, nil
}

// checkLegacyIndexMigration flags a pre-sharding state/message-index.json
// or state/event-index.json left behind after the .migrated marker was
// written (spec.md 4.5: "a marker file .migrated signals that legacy
// state/message-index.json is no longer authoritative"). Neither file is
// ever read for lookups once the marker exists; this is a hygiene check
// only.
func (s *Store) checkLegacyIndexMigration(team string) DoctorCheckResult {
	var stale []string
	if _, err := os.Stat(s.legacyMessageIndexPath(team)); err == nil {
		stale = append(stale, "state/message-index.json")
	}
	if _, err := os.Stat(s.legacyEventIndexPath(team)); err == nil {
		stale = append(stale, "state/event-index.json")
	}
	if len(stale) == 0 {
		return DoctorCheckResult{Name: "legacy_index_migration", Status: "ok"}
	}
	return DoctorCheckResult{
		Name:   "legacy_index_migration",
		Status: "fail",
		Detail: "stale pre-migration index file(s) present, no longer authoritative: " + strings.Join(stale, ", "),
	}
}

// crossCheckMessageIndex performs the same reconciliation rehydrate does,
// read-only: every non-malformed inbox record must have a message-index
// entry, and every message-index entry must resolve back to a log record.
func (s *Store) crossCheckMessageIndex(team string) (logCount, indexCount int, missing, orphaned []string, err error) {
	agents, err := readDirNames(s.inboxesDir(team))
	if err != nil {
		return 0, 0, nil, nil, err
	}
	logIDs := map[string]bool{}
	for _, name := range agents {
		agent := trimJSONLSuffix(name)
		if agent == "" {
			continue
		}
		records, _, err := readJSONL(s.inboxPath(team, agent))
		if err != nil {
			return 0, 0, nil, nil, err
		}
		for _, r := range records {
			env := decodeEnvelope(r.Object)
			if env.ID == "" {
				continue
			}
			logIDs[env.ID] = true
			logCount++
		}
	}

	indexed, err := s.scanAllMessageShards(team)
	if err != nil {
		return 0, 0, nil, nil, err
	}
	indexCount = len(indexed)

	for id := range logIDs {
		if _, ok := indexed[id]; !ok {
			missing = append(missing, id)
		}
	}
	for id := range indexed {
		if !logIDs[id] {
			orphaned = append(orphaned, id)
		}
	}
	return logCount, indexCount, missing, orphaned, nil
}

// crossCheckAckIndex reports ack records whose message_id is absent from
// the message index.
func (s *Store) crossCheckAckIndex(team string) ([]string, error) {
	ackIdx, err := s.loadAckIndex(team)
	if err != nil {
		return nil, err
	}
	var dangling []string
	for messageID := range ackIdx {
		if _, ok, err := s.lookupMessage(team, messageID); err != nil {
			return nil, err
		} else if !ok {
			dangling = append(dangling, messageID)
		}
	}
	return dangling, nil
}
