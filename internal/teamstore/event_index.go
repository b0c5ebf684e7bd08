package teamstore

import "os"

// eventIndexShard mirrors messageIndexShard but keyed by event_id and
// pointing into the dated event log files (spec.md 4.6).
type eventIndexShard map[string]EventLocator

func (s *Store) hasEvent(team, id string) (bool, error) {
	shard, err := s.loadEventShard(team, shardKey(id))
	if err != nil {
		return false, err
	}
	_, ok := shard[id]
	return ok, nil
}

func (s *Store) loadEventShard(team, shard string) (eventIndexShard, error) {
	var idx eventIndexShard
	if err := readJSON(s.eventIndexShardPath(team, shard), &idx); err != nil {
		return nil, err
	}
	if idx == nil {
		idx = eventIndexShard{}
	}
	return idx, nil
}

func (s *Store) putEvent(team, id string, loc EventLocator) error {
	shard := shardKey(id)
	idx, err := s.loadEventShard(team, shard)
	if err != nil {
		return err
	}
	idx[id] = loc
	return writeJSONAtomic(s.eventIndexShardPath(team, shard), idx)
}

func (s *Store) lookupEvent(team, id string) (EventLocator, bool, error) {
	idx, err := s.loadEventShard(team, shardKey(id))
	if err != nil {
		return EventLocator{}, false, err
	}
	loc, ok := idx[id]
	return loc, ok, nil
}

func (s *Store) scanAllEventShards(team string) (map[string]EventLocator, error) {
	dir := s.eventIndexShardsDir(team)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]EventLocator{}, nil
		}
		return nil, err
	}
	out := map[string]EventLocator{}
	for _, e := range entries {
		if e.IsDir() || e.Name() == ".migrated" {
			continue
		}
		var shard eventIndexShard
		if err := readJSON(dir+"/"+e.Name(), &shard); err != nil {
			return nil, err
		}
		for id, loc := range shard {
			out[id] = loc
		}
	}
	return out, nil
}

func (s *Store) replaceAllEventShards(team string, byShard map[string]eventIndexShard) error {
	return replaceShardedDir(s.eventIndexShardsDir(team), byShard)
}
