package teamstore

import (
	"os"
	"sort"
	"time"
)

// readDirNames lists file names directly under dir, returning an empty
// slice (not an error) if dir does not exist yet.
func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// clearDir removes every entry directly under dir without removing dir
// itself, creating it first if absent. Used by rehydrate to rebuild
// tasks/ from scratch before replaying snapshots.
func clearDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(dir + "/" + e.Name()); err != nil {
			return err
		}
	}
	return nil
}

func sortMalformed(items []MalformedDiagnostic) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].FilePath != items[j].FilePath {
			return items[i].FilePath < items[j].FilePath
		}
		return items[i].FirstSeenAt < items[j].FirstSeenAt
	})
}

// parseRFC3339UTC parses value as RFC 3339 and normalizes it to UTC. Used
// throughout for created_at/ts comparisons and staleness checks.
func parseRFC3339UTC(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// orderingKeyLess implements spec.md 4.11's ordering key comparison:
// (created_at, message_id), created_at compared lexicographically as
// RFC 3339 UTC strings, tie-broken by lexicographic message_id.
func orderingKeyLess(aCreatedAt, aID, bCreatedAt, bID string) bool {
	if aCreatedAt != bCreatedAt {
		return aCreatedAt < bCreatedAt
	}
	return aID < bID
}
