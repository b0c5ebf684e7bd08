package teamstore

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// FollowInbox streams envelopes appended to agent's inbox after the
// initial page, blocking on filesystem writes instead of polling. This is
// the enrichment behind `read --follow` (not present in the original CLI,
// but a direct extension of the reader over the same inbox file). It
// returns when ctx is done or the watcher errors.
func (s *Store) FollowInbox(ctx context.Context, team, agent string, knownOffset int64, out chan<- Envelope) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := s.inboxesDir(team)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	path := s.inboxPath(team, agent)
	offset := knownOffset

	drain := func() error {
		f, err := openAt(path, offset)
		if err != nil {
			return err
		}
		if f == nil {
			return nil
		}
		defer f.Close()
		newOffset, records, err := scanFrom(f, offset)
		if err != nil {
			return err
		}
		offset = newOffset
		for _, r := range records {
			out <- decodeEnvelope(r.Object)
		}
		return nil
	}

	if err := drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := drain(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
