package teamstore

import "fmt"

// nudgeKey scopes cooldown suppression to (team, recipient, cooldown_key)
// as spec.md 4.13 requires.
func nudgeKey(team, recipient, cooldownKey string) string {
	return fmt.Sprintf("%s|%s|%s", team, recipient, cooldownKey)
}

func (s *Store) loadNudgeIndex(team string) (map[string]string, error) {
	var idx map[string]string
	if err := readJSON(s.nudgeIndexPath(team), &idx); err != nil {
		return nil, err
	}
	if idx == nil {
		idx = map[string]string{}
	}
	return idx, nil
}

// checkAndMarkCooldown implements spec.md 4.13's gate: if the recipient's
// last send under cooldownKey was less than cooldownSeconds ago, the send
// is suppressed (suppressed=true) and last_sent_at is left untouched.
// Otherwise last_sent_at is updated to now and the send proceeds. The
// whole check-then-update runs under nudge-cooldown.lock so concurrent
// sends cannot both observe "not suppressed".
func (s *Store) checkAndMarkCooldown(team, recipient, cooldownKey string, cooldownSeconds int) (bool, error) {
	if cooldownKey == "" {
		return false, nil
	}
	suppressed := false
	err := s.withLock(team, ResourceNudgeCooldown, func() error {
		idx, err := s.loadNudgeIndex(team)
		if err != nil {
			return err
		}
		key := nudgeKey(team, recipient, cooldownKey)
		now := nowRFC3339()
		if last, ok := idx[key]; ok {
			lastAt, err := parseRFC3339UTC(last)
			if err == nil {
				nowAt, _ := parseRFC3339UTC(now)
				if nowAt.Sub(lastAt).Seconds() < float64(cooldownSeconds) {
					suppressed = true
					return nil
				}
			}
		}
		idx[key] = now
		return writeJSONAtomic(s.nudgeIndexPath(team), idx)
	})
	return suppressed, err
}
