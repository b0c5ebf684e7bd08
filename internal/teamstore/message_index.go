package teamstore

import (
	"os"
)

// messageIndexShard is the on-disk shape of one
// state/message-index-shards/<shard>.json file: message_id -> locator
// (spec.md 4.5).
type messageIndexShard map[string]MessageLocator

// hasMessage reports whether message_id id is already indexed. Callers use
// this for the dedupe gate (spec.md 4.8) before appending; it must be
// called while holding messages.lock so the check-then-append is atomic.
func (s *Store) hasMessage(team, id string) (bool, error) {
	shard, err := s.loadMessageShard(team, shardKey(id))
	if err != nil {
		return false, err
	}
	_, ok := shard[id]
	return ok, nil
}

func (s *Store) loadMessageShard(team, shard string) (messageIndexShard, error) {
	var idx messageIndexShard
	if err := readJSON(s.messageIndexShardPath(team, shard), &idx); err != nil {
		return nil, err
	}
	if idx == nil {
		idx = messageIndexShard{}
	}
	return idx, nil
}

// putMessage records id's locator in its shard. The caller must hold
// messages.lock.
func (s *Store) putMessage(team, id string, loc MessageLocator) error {
	shard := shardKey(id)
	idx, err := s.loadMessageShard(team, shard)
	if err != nil {
		return err
	}
	idx[id] = loc
	return writeJSONAtomic(s.messageIndexShardPath(team, shard), idx)
}

// lookupMessage resolves id to its locator, or ok=false if absent from the
// index. Readers falling back on an index miss must full-scan the inbox
// log per spec.md 9's eventual-consistency contract.
func (s *Store) lookupMessage(team, id string) (MessageLocator, bool, error) {
	idx, err := s.loadMessageShard(team, shardKey(id))
	if err != nil {
		return MessageLocator{}, false, err
	}
	loc, ok := idx[id]
	return loc, ok, nil
}

// scanAllMessageShards enumerates every entry across every shard file, used
// by rehydrate verification and doctor check.
func (s *Store) scanAllMessageShards(team string) (map[string]MessageLocator, error) {
	dir := s.messageIndexShardsDir(team)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]MessageLocator{}, nil
		}
		return nil, err
	}
	out := map[string]MessageLocator{}
	for _, e := range entries {
		if e.IsDir() || e.Name() == ".migrated" {
			continue
		}
		var shard messageIndexShard
		if err := readJSON(dir+"/"+e.Name(), &shard); err != nil {
			return nil, err
		}
		for id, loc := range shard {
			out[id] = loc
		}
	}
	return out, nil
}

// replaceAllMessageShards atomically swaps the entire shard set, used by
// rehydrate (spec.md 4.14). It writes the new shards into a sibling
// directory and renames it into place so readers never see a partial
// shard set (spec.md 9's shard-swap guidance).
func (s *Store) replaceAllMessageShards(team string, byShard map[string]messageIndexShard) error {
	return replaceShardedDir(s.messageIndexShardsDir(team), byShard)
}
