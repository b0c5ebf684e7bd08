package teamstore

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Resource names for withLock, in the mandated global acquisition order
// from spec.md 4.2. Inverting this order across nested critical sections
// is a bug, not a style choice: two processes taking two of these locks in
// opposite order can deadlock.
const (
	ResourceMessages       = "messages"
	ResourceEvents         = "events"
	ResourceAcks           = "acks"
	ResourceTaskSnapshots  = "task-snapshots"
	ResourceStateRehydrate = "state-rehydrate"
	ResourceMalformedJSONL = "malformed-jsonl"
	ResourceDeadLetter     = "dead-letter"
	ResourceNudgeCooldown  = "nudge-cooldown"
)

var lockOrder = map[string]int{
	ResourceMessages:       0,
	ResourceEvents:         1,
	ResourceAcks:           2,
	ResourceTaskSnapshots:  3,
	ResourceStateRehydrate: 4,
	ResourceMalformedJSONL: 5,
	ResourceDeadLetter:     6,
	ResourceNudgeCooldown:  7,
}

// withLock acquires an exclusive advisory lock on
// teams/<team>/locks/<resource>.lock, runs fn, and guarantees the lock is
// released even if fn panics or returns an error. The lock is scoped to
// this process/file-descriptor; it provides no cross-host guarantee
// (spec.md 4.2, 5).
func (s *Store) withLock(team, resource string, fn func() error) error {
	if _, ok := lockOrder[resource]; !ok {
		return &IdentifierError{Field: "resource", Value: resource}
	}
	locksDir := s.locksDir(team)
	if err := os.MkdirAll(locksDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(locksDir, resource+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return ErrLockFailed
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return ErrLockFailed
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	return fn()
}
