package teamstore

import "testing"

func TestStatusCountsMessagesAcksAndTasks(t *testing.T) {
	s := newTestStore(t)
	env1 := Envelope{ID: "msg_s1", Type: "idle_notification", From: "lead", To: "dev"}
	env2 := Envelope{ID: "msg_s2", Type: "idle_notification", From: "lead", To: "dev"}
	if _, _, err := s.Send("demo", env1); err != nil {
		t.Fatalf("send 1 failed: %v", err)
	}
	if _, _, err := s.Send("demo", env2); err != nil {
		t.Fatalf("send 2 failed: %v", err)
	}
	if _, err := s.Ack("demo", "msg_s1", "dev", ""); err != nil {
		t.Fatalf("ack failed: %v", err)
	}
	assign := Envelope{
		ID: "msg_s3", Type: "task_assign", From: "lead", To: "dev",
		TaskID: "task_s1", Payload: map[string]any{"subject": "do it"},
	}
	if _, _, err := s.Send("demo", assign); err != nil {
		t.Fatalf("task assign failed: %v", err)
	}

	report, err := s.Status("demo", 60)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if report.MessagesTotal != 3 {
		t.Fatalf("expected 3 messages total, got %d", report.MessagesTotal)
	}
	if report.AckedTotal != 1 {
		t.Fatalf("expected 1 acked, got %d", report.AckedTotal)
	}
	if report.UnreadTotal != 2 {
		t.Fatalf("expected 2 unread, got %d", report.UnreadTotal)
	}
	if report.TasksTotal != 1 {
		t.Fatalf("expected 1 task, got %d", report.TasksTotal)
	}
}

func TestStatusRejectsUnsafeTeamIdentifier(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Status("../demo", 60); err == nil {
		t.Fatalf("expected an error for an unsafe team identifier")
	}
}
