package teamstore

import "testing"

func TestTaskAssignThenUpdateMergesFields(t *testing.T) {
	s := newTestStore(t)
	assign := Envelope{
		ID: "msg_t1", Type: "task_assign", From: "lead", To: "dev",
		TaskID:    "task_1",
		CreatedAt: "2026-01-01T00:00:00Z",
		Payload:   map[string]any{"subject": "fix bug", "assignee": "dev"},
	}
	if _, _, err := s.Send("demo", assign); err != nil {
		t.Fatalf("assign send failed: %v", err)
	}

	update := Envelope{
		ID: "msg_t2", Type: "task_update", From: "dev", To: "lead",
		TaskID:    "task_1",
		CreatedAt: "2026-01-01T00:01:00Z",
		Payload:   map[string]any{"status": "in_progress"},
	}
	if _, _, err := s.Send("demo", update); err != nil {
		t.Fatalf("update send failed: %v", err)
	}

	snap, ok, err := s.LoadTaskSnapshot("demo", "task_1")
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected snapshot to exist")
	}
	if snap.Subject != "fix bug" {
		t.Fatalf("expected subject carried over from assign, got %q", snap.Subject)
	}
	if snap.Assignee != "dev" {
		t.Fatalf("expected assignee carried over from assign, got %q", snap.Assignee)
	}
	if snap.Status != "in_progress" {
		t.Fatalf("expected status from update, got %q", snap.Status)
	}
	if snap.SnapshotVersion != 2 {
		t.Fatalf("expected snapshot_version 2, got %d", snap.SnapshotVersion)
	}
}

func TestTaskUpdateWithOlderOrderingKeyIsDiscarded(t *testing.T) {
	s := newTestStore(t)
	later := Envelope{
		ID: "msg_t2", Type: "task_update", From: "dev", To: "lead",
		TaskID:    "task_2",
		CreatedAt: "2026-01-01T00:05:00Z",
		Payload:   map[string]any{"status": "done"},
	}
	if _, _, err := s.Send("demo", later); err != nil {
		t.Fatalf("later send failed: %v", err)
	}

	if err := s.ApplyTaskMessage("demo", Envelope{
		ID: "msg_t1", Type: "task_update", From: "lead", To: "dev",
		TaskID: "task_2", CreatedAt: "2026-01-01T00:00:00Z",
		Payload: map[string]any{"status": "in_progress"},
	}); err != nil {
		t.Fatalf("stale apply failed: %v", err)
	}

	snap, ok, err := s.LoadTaskSnapshot("demo", "task_2")
	if err != nil || !ok {
		t.Fatalf("load snapshot failed: ok=%v err=%v", ok, err)
	}
	if snap.Status != "done" {
		t.Fatalf("expected stale update to be discarded, status=%q", snap.Status)
	}
	if snap.SnapshotVersion != 1 {
		t.Fatalf("expected snapshot_version to stay at 1, got %d", snap.SnapshotVersion)
	}
}
