package teamstore

import (
	"os"
	"testing"
)

func TestDoctorCheckReportsOKOnCleanStore(t *testing.T) {
	s := newTestStore(t)
	env := Envelope{ID: "msg_d1", Type: "idle_notification", From: "lead", To: "dev"}
	if _, _, err := s.Send("demo", env); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	report, err := s.DoctorCheck("demo")
	if err != nil {
		t.Fatalf("doctor check failed: %v", err)
	}
	if report.OverallStatus != "ok" {
		t.Fatalf("expected overall_status ok on a clean store, got %q (%+v)", report.OverallStatus, report.Checks)
	}
}

func TestDoctorCheckFlagsMissingIndexEntry(t *testing.T) {
	s := newTestStore(t)
	env := Envelope{ID: "msg_d2", Type: "idle_notification", From: "lead", To: "dev"}
	if _, _, err := s.Send("demo", env); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := os.RemoveAll(s.messageIndexShardsDir("demo")); err != nil {
		t.Fatalf("failed to delete message index shards: %v", err)
	}

	report, err := s.DoctorCheck("demo")
	if err != nil {
		t.Fatalf("doctor check failed: %v", err)
	}
	if report.OverallStatus != "fail" {
		t.Fatalf("expected overall_status fail after deleting the index, got %q", report.OverallStatus)
	}
}
