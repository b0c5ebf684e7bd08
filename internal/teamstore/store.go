package teamstore

import (
	"os"
	"path/filepath"
)

// Store is the process-wide handle for all core operations. Every method
// is a pure function of (dataRoot, inputs); a Store carries no per-team
// in-memory state so that tests can parameterize over isolated temp roots
// (spec.md 9's "Global state" note).
type Store struct {
	dataRoot string

	// WarnMalformed, when true, logs one warning to stderr per newly
	// observed malformed-line fingerprint (spec.md 6:
	// TEAM_CHAT_WARN_MALFORMED=1).
	WarnMalformed bool
}

// NewStore returns a Store rooted at dataRoot. dataRoot is created lazily
// by the operations that need it, not here.
func NewStore(dataRoot string) *Store {
	return &Store{dataRoot: dataRoot}
}

// DataRoot returns the filesystem directory this Store operates under.
func (s *Store) DataRoot() string { return s.dataRoot }

func (s *Store) teamDir(team string) string {
	return filepath.Join(s.dataRoot, "teams", team)
}

func (s *Store) inboxesDir(team string) string {
	return filepath.Join(s.teamDir(team), "inboxes")
}

func (s *Store) inboxPath(team, agent string) string {
	return filepath.Join(s.inboxesDir(team), agent+".jsonl")
}

func (s *Store) eventsDir(team string) string {
	return filepath.Join(s.teamDir(team), "events")
}

func (s *Store) eventLogPath(team, day string) string {
	return filepath.Join(s.eventsDir(team), day+".jsonl")
}

func (s *Store) tasksDir(team string) string {
	return filepath.Join(s.teamDir(team), "tasks")
}

func (s *Store) taskSnapshotPath(team, taskID string) string {
	return filepath.Join(s.tasksDir(team), taskID+".json")
}

func (s *Store) stateDir(team string) string {
	return filepath.Join(s.teamDir(team), "state")
}

func (s *Store) deadLetterDir(team string) string {
	return filepath.Join(s.teamDir(team), "dead-letter")
}

func (s *Store) deadLetterPath(team, day string) string {
	return filepath.Join(s.deadLetterDir(team), day+".jsonl")
}

func (s *Store) locksDir(team string) string {
	return filepath.Join(s.teamDir(team), "locks")
}

func (s *Store) messageIndexShardsDir(team string) string {
	return filepath.Join(s.stateDir(team), "message-index-shards")
}

func (s *Store) messageIndexShardPath(team, shard string) string {
	return filepath.Join(s.messageIndexShardsDir(team), shard+".json")
}

func (s *Store) messageIndexMigratedMarker(team string) string {
	return filepath.Join(s.messageIndexShardsDir(team), ".migrated")
}

func (s *Store) legacyMessageIndexPath(team string) string {
	return filepath.Join(s.stateDir(team), "message-index.json")
}

func (s *Store) eventIndexShardsDir(team string) string {
	return filepath.Join(s.stateDir(team), "event-index-shards")
}

func (s *Store) eventIndexShardPath(team, shard string) string {
	return filepath.Join(s.eventIndexShardsDir(team), shard+".json")
}

func (s *Store) eventIndexMigratedMarker(team string) string {
	return filepath.Join(s.eventIndexShardsDir(team), ".migrated")
}

func (s *Store) legacyEventIndexPath(team string) string {
	return filepath.Join(s.stateDir(team), "event-index.json")
}

func (s *Store) ackIndexPath(team string) string {
	return filepath.Join(s.stateDir(team), "ack-index.json")
}

func (s *Store) nudgeIndexPath(team string) string {
	return filepath.Join(s.stateDir(team), "nudge-index.json")
}

func (s *Store) malformedIndexPath(team string) string {
	return filepath.Join(s.stateDir(team), "malformed-index.json")
}

func (s *Store) teamMetaPath(team string) string {
	return filepath.Join(s.teamDir(team), "team.json")
}

func (s *Store) configPath(team string) string {
	return filepath.Join(s.teamDir(team), "config.json")
}

// TeamMeta describes the team as seeded by `init` (spec.md 6).
type TeamMeta struct {
	Team      string   `json:"team"`
	Members   []string `json:"members"`
	CreatedAt string   `json:"created_at"`
}

// ensureLayout creates the full directory skeleton for team and seeds
// empty indexes, mirroring the `init` operation's contract (spec.md 6:
// "create directory skeleton; seed empty indexes").
func (s *Store) ensureLayout(team string) error {
	dirs := []string{
		s.teamDir(team),
		s.inboxesDir(team),
		s.eventsDir(team),
		s.tasksDir(team),
		s.stateDir(team),
		s.deadLetterDir(team),
		s.locksDir(team),
		s.messageIndexShardsDir(team),
		s.eventIndexShardsDir(team),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	if _, err := os.Stat(s.ackIndexPath(team)); os.IsNotExist(err) {
		if err := writeJSONAtomic(s.ackIndexPath(team), map[string]AckRecord{}); err != nil {
			return err
		}
	}
	if _, err := os.Stat(s.nudgeIndexPath(team)); os.IsNotExist(err) {
		if err := writeJSONAtomic(s.nudgeIndexPath(team), map[string]string{}); err != nil {
			return err
		}
	}
	migratedMarker := s.messageIndexMigratedMarker(team)
	if _, err := os.Stat(migratedMarker); os.IsNotExist(err) {
		if err := os.WriteFile(migratedMarker, []byte(nowRFC3339()+"\n"), 0o644); err != nil {
			return err
		}
	}
	eventsMigratedMarker := s.eventIndexMigratedMarker(team)
	if _, err := os.Stat(eventsMigratedMarker); os.IsNotExist(err) {
		if err := os.WriteFile(eventsMigratedMarker, []byte(nowRFC3339()+"\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// teamExists reports whether team has been initialized under this Store's
// data root. Operations other than Init return ErrBootstrap when this is
// false (spec.md 7 exit code 2).
func (s *Store) teamExists(team string) bool {
	info, err := os.Stat(s.teamDir(team))
	return err == nil && info.IsDir()
}

// Init creates the directory skeleton for team and records its member
// roster, per spec.md 6 `init <team> --members csv`.
func (s *Store) Init(team string, members []string) (*TeamMeta, error) {
	if _, err := validateIdentifier("team", team); err != nil {
		return nil, err
	}
	for _, m := range members {
		if _, err := validateIdentifier("member", m); err != nil {
			return nil, err
		}
	}
	if err := s.ensureLayout(team); err != nil {
		return nil, err
	}
	meta := &TeamMeta{Team: team, Members: members, CreatedAt: nowRFC3339()}
	if _, err := os.Stat(s.teamMetaPath(team)); os.IsNotExist(err) {
		if err := writeJSONAtomic(s.teamMetaPath(team), meta); err != nil {
			return nil, err
		}
	} else {
		if err := readJSON(s.teamMetaPath(team), meta); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

// LoadTeamMeta reads back the roster recorded by Init.
func (s *Store) LoadTeamMeta(team string) (*TeamMeta, error) {
	if !s.teamExists(team) {
		return nil, ErrBootstrap
	}
	var meta TeamMeta
	if err := readJSON(s.teamMetaPath(team), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
