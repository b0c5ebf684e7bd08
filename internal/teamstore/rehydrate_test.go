package teamstore

import (
	"os"
	"testing"
)

func TestRehydrateRecoversFromDeletedMessageIndex(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		env := Envelope{ID: idFor(i), Type: "idle_notification", From: "lead", To: "dev", CreatedAt: tsFor(i)}
		if _, _, err := s.Send("demo", env); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}
	if _, err := s.Ack("demo", idFor(1), "dev", ""); err != nil {
		t.Fatalf("ack failed: %v", err)
	}

	before, err := s.Read("demo", "dev", ReadOptions{Unread: true, Limit: 10})
	if err != nil {
		t.Fatalf("read before failed: %v", err)
	}

	if err := os.RemoveAll(s.messageIndexShardsDir("demo")); err != nil {
		t.Fatalf("failed to delete message index shards: %v", err)
	}
	if err := os.RemoveAll(s.ackIndexPath("demo")); err != nil {
		t.Fatalf("failed to delete ack index: %v", err)
	}

	report, err := s.Rehydrate("demo")
	if err != nil {
		t.Fatalf("rehydrate failed: %v", err)
	}
	if report.MessagesIndexed != 3 {
		t.Fatalf("expected 3 messages reindexed, got %d", report.MessagesIndexed)
	}

	after, err := s.Read("demo", "dev", ReadOptions{Unread: true, Limit: 10})
	if err != nil {
		t.Fatalf("read after failed: %v", err)
	}
	if len(after.Envelopes) != len(before.Envelopes) {
		t.Fatalf("expected unread set to match pre-deletion state: before=%d after=%d", len(before.Envelopes), len(after.Envelopes))
	}
}

func TestRehydrateRebuildsTaskSnapshotWithAllFields(t *testing.T) {
	s := newTestStore(t)
	assign := Envelope{
		ID: "msg_r1", Type: "task_assign", From: "lead", To: "dev",
		TaskID: "task_r", CreatedAt: "2026-01-01T00:00:00Z",
		Payload: map[string]any{"subject": "ship it", "assignee": "dev"},
	}
	update := Envelope{
		ID: "msg_r2", Type: "task_update", From: "dev", To: "lead",
		TaskID: "task_r", CreatedAt: "2026-01-01T00:01:00Z",
		Payload: map[string]any{"status": "in_progress"},
	}
	if _, _, err := s.Send("demo", assign); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, _, err := s.Send("demo", update); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, err := s.Rehydrate("demo"); err != nil {
		t.Fatalf("rehydrate failed: %v", err)
	}

	snap, ok, err := s.LoadTaskSnapshot("demo", "task_r")
	if err != nil || !ok {
		t.Fatalf("load snapshot failed: ok=%v err=%v", ok, err)
	}
	if snap.Subject != "ship it" || snap.Assignee != "dev" || snap.Status != "in_progress" {
		t.Fatalf("expected rehydrated snapshot to fold both messages, got %+v", snap)
	}
}
