package teamstore

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// MalformedDiagnostic records one distinct malformed JSONL line, keyed by
// (file_path, line_hash) so repeated reads of a stable log never inflate
// the counter (spec.md 4.4, 3).
type MalformedDiagnostic struct {
	FilePath    string `json:"file_path"`
	LineNumber  int    `json:"line_number"`
	LineHash    string `json:"line_hash"`
	Reason      string `json:"reason"`
	FirstSeenAt string `json:"first_seen_at"`
	LastSeenAt  string `json:"last_seen_at"`
	Count       int    `json:"count"`
}

// jsonlRecord is one successfully decoded line plus its position, used by
// callers that need to build offset-based locators (message/event index).
type jsonlRecord struct {
	LineNumber int
	Offset     int64
	Object     map[string]any
}

// malformedHit is a single malformed-line observation surfaced to the
// caller for fingerprint dedup; it carries no historical state itself.
type malformedHit struct {
	LineNumber int
	Raw        []byte
	Reason     string
}

// readJSONL streams path line by line. A line that fails to parse as a
// JSON object is never fatal: it is skipped and reported via hits, and
// reading continues (spec.md 4.4). Missing files are treated as empty.
func readJSONL(path string) ([]jsonlRecord, []malformedHit, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	defer f.Close()

	var records []jsonlRecord
	var hits []malformedHit

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	lineNo := 0
	var offset int64
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		lineLen := int64(len(raw)) + 1 // + newline
		start := offset
		offset += lineLen

		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			hits = append(hits, malformedHit{LineNumber: lineNo, Raw: append([]byte(nil), trimmed...), Reason: "invalid json: " + err.Error()})
			continue
		}
		if obj == nil {
			hits = append(hits, malformedHit{LineNumber: lineNo, Raw: append([]byte(nil), trimmed...), Reason: "not a json object"})
			continue
		}
		records = append(records, jsonlRecord{LineNumber: lineNo, Offset: start, Object: obj})
	}
	if err := scanner.Err(); err != nil {
		// A truncated tail line still yields everything read so far
		// (spec.md 8: "Inbox file truncated mid-line").
		hits = append(hits, malformedHit{LineNumber: lineNo + 1, Raw: nil, Reason: "read error: " + err.Error()})
	}
	return records, hits, nil
}

// readRecordAtOffset seeks to offset and decodes exactly one line, used by
// the message index fast path to avoid a full log scan on read.
func readRecordAtOffset(path string, offset int64) (map[string]any, bool) {
	if offset < 0 {
		return nil, false
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	if _, err := f.Seek(offset, 0); err != nil {
		return nil, false
	}
	reader := bufio.NewReader(f)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// openAt opens path and seeks to offset, returning a nil file (not an
// error) if the file does not exist yet, so a follower can wait for it to
// be created without special-casing.
func openAt(path string, offset int64) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if _, err := f.Seek(offset, 0); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// scanFrom reads every complete line remaining in f, starting at the
// caller's current seek position, and returns the resulting jsonlRecords
// plus the offset just past the last complete line consumed.
func scanFrom(f *os.File, startOffset int64) (int64, []jsonlRecord, error) {
	reader := bufio.NewReader(f)
	offset := startOffset
	var records []jsonlRecord
	for {
		raw, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// An unterminated tail is left for the next call.
				return offset, records, nil
			}
			return offset, records, err
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 {
			var obj map[string]any
			if err := json.Unmarshal(trimmed, &obj); err == nil {
				records = append(records, jsonlRecord{Offset: offset, Object: obj})
			}
		}
		offset += int64(len(raw))
	}
}

// recordMalformed folds a fresh malformedHit into the persisted diagnostics
// index under the malformed-jsonl lock, deduplicating by (file_path,
// line_hash). Returns true if this is a newly seen fingerprint, so callers
// can honor TEAM_CHAT_WARN_MALFORMED.
func (s *Store) recordMalformed(team, filePath string, hit malformedHit) (bool, error) {
	lineHash := sha256Hex(hit.Raw)
	now := time.Now().UTC().Format(time.RFC3339)
	isNew := false
	err := s.withLock(team, ResourceMalformedJSONL, func() error {
		idxPath := s.malformedIndexPath(team)
		var idx map[string]*MalformedDiagnostic
		if err := readJSON(idxPath, &idx); err != nil {
			return err
		}
		if idx == nil {
			idx = map[string]*MalformedDiagnostic{}
		}
		key := filePath + "|" + lineHash
		entry, ok := idx[key]
		if !ok {
			isNew = true
			entry = &MalformedDiagnostic{
				FilePath:    filePath,
				LineNumber:  hit.LineNumber,
				LineHash:    lineHash,
				Reason:      hit.Reason,
				FirstSeenAt: now,
				Count:       1,
			}
			idx[key] = entry
		}
		entry.LastSeenAt = now
		return writeJSONAtomic(idxPath, idx)
	})
	if err == nil && isNew && s.WarnMalformed {
		log.Printf("teamchat: malformed line in %s:%d: %s", filePath, hit.LineNumber, hit.Reason)
	}
	return isNew, err
}

// loadMalformedDiagnostics returns the persisted diagnostics for a team,
// sorted by file path then first-seen time, for status/doctor reporting.
func (s *Store) loadMalformedDiagnostics(team string) ([]MalformedDiagnostic, error) {
	var idx map[string]*MalformedDiagnostic
	if err := readJSON(s.malformedIndexPath(team), &idx); err != nil {
		return nil, err
	}
	out := make([]MalformedDiagnostic, 0, len(idx))
	for _, v := range idx {
		out = append(out, *v)
	}
	sortMalformed(out)
	return out, nil
}
