package teamstore

import (
	"testing"
	"time"
)

func TestTickRetriesThenDeadLettersAfterExhaustion(t *testing.T) {
	s := newTestStore(t)
	sent := Envelope{
		ID: "msg_ra1", Type: "idle_notification", From: "lead", To: "dev",
		RequireAck: true, CreatedAt: "2026-01-01T00:00:00Z",
	}
	if _, _, err := s.Send("demo", sent); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	base, err := parseRFC3339UTC(sent.CreatedAt)
	if err != nil {
		t.Fatalf("parse created_at failed: %v", err)
	}

	policy := policyFor("idle_notification")
	now := base

	for attempt := 0; attempt <= policy.MaxAttempts; attempt++ {
		now = now.Add(policy.delayForAttempt(attempt) + time.Second)
		if err := s.Tick("demo", now); err != nil {
			t.Fatalf("tick %d failed: %v", attempt, err)
		}
	}

	status, err := s.Status("demo", 60)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.DeadLettered == 0 {
		t.Fatalf("expected at least one dead-lettered message after exhausting retries")
	}
}

func TestTickDoesNothingBeforeNextAttempt(t *testing.T) {
	s := newTestStore(t)
	sent := Envelope{
		ID: "msg_ra2", Type: "idle_notification", From: "lead", To: "dev",
		RequireAck: true, CreatedAt: "2026-01-01T00:00:00Z",
	}
	if _, _, err := s.Send("demo", sent); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	now, _ := parseRFC3339UTC(sent.CreatedAt)
	if err := s.Tick("demo", now); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	status, err := s.Status("demo", 60)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.DeadLettered != 0 {
		t.Fatalf("expected no dead-letter before the retry delay elapses")
	}
}
