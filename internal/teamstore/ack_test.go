package teamstore

import "testing"

func TestAckIsIdempotentAndFirstWriterWins(t *testing.T) {
	s := newTestStore(t)
	env := Envelope{ID: "msg_a1", Type: "idle_notification", From: "lead", To: "dev"}
	if _, _, err := s.Send("demo", env); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	first, err := s.Ack("demo", "msg_a1", "dev", "")
	if err != nil {
		t.Fatalf("first ack failed: %v", err)
	}
	if first.AckedBy != "dev" {
		t.Fatalf("expected first ack recorded by dev, got %q", first.AckedBy)
	}

	second, err := s.Ack("demo", "msg_a1", "qa", "")
	if err != nil {
		t.Fatalf("second ack failed: %v", err)
	}
	if second.AckedBy != "dev" {
		t.Fatalf("expected ack record to remain first-writer-wins (dev), got %q", second.AckedBy)
	}
}

func TestAckOfUnknownMessageIsNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Ack("demo", "msg_missing", "dev", ""); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAckRejectsUnsafeAgentIdentifier(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Ack("demo", "msg_a1", "../dev", ""); err == nil {
		t.Fatalf("expected an error for an unsafe agent identifier")
	} else if _, ok := err.(*IdentifierError); !ok {
		t.Fatalf("expected IdentifierError, got %v (%T)", err, err)
	}
}
