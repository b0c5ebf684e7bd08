package teamstore

import "testing"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir())
	if _, err := s.Init("demo", []string{"lead", "dev", "qa"}); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return s
}

func TestSendAndReadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	env := Envelope{
		ID:      "msg_1",
		Type:    "idle_notification",
		From:    "lead",
		To:      "dev",
		Payload: map[string]any{"note": "ping"},
	}
	result, suppressed, err := s.Send("demo", env)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if suppressed {
		t.Fatalf("expected send not suppressed")
	}
	if result.CreatedAt == "" {
		t.Fatalf("expected created_at to be filled in")
	}

	read, err := s.Read("demo", "dev", ReadOptions{Limit: 10})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(read.Envelopes) != 1 || read.Envelopes[0].ID != "msg_1" {
		t.Fatalf("expected one envelope msg_1, got %+v", read.Envelopes)
	}
}

func TestSendIsIdempotentOnDuplicateID(t *testing.T) {
	s := newTestStore(t)
	env := Envelope{ID: "msg_dup", Type: "idle_notification", From: "lead", To: "dev"}
	if _, _, err := s.Send("demo", env); err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	_, suppressed, err := s.Send("demo", env)
	if err != nil {
		t.Fatalf("second send failed: %v", err)
	}
	if !suppressed {
		t.Fatalf("expected duplicate send to be suppressed")
	}

	read, err := s.Read("demo", "dev", ReadOptions{Limit: 10})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(read.Envelopes) != 1 {
		t.Fatalf("expected exactly one stored envelope, got %d", len(read.Envelopes))
	}
}

func TestSendRejectsUnknownType(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Send("demo", Envelope{ID: "msg_bad", Type: "not_a_type", From: "lead", To: "dev"})
	if err != ErrUnknownType {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestSendRejectsUnsafeIdentifier(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Send("demo", Envelope{ID: "msg_bad", Type: "idle_notification", From: "../lead", To: "dev"})
	if _, ok := err.(*IdentifierError); !ok {
		t.Fatalf("expected IdentifierError, got %v (%T)", err, err)
	}
}

func TestCooldownSuppressesSecondSend(t *testing.T) {
	s := newTestStore(t)
	env := Envelope{
		Type: "idle_notification", From: "lead", To: "dev",
		CooldownKey: "nudge", CooldownSeconds: 60,
	}
	env.ID = "msg_c1"
	if _, suppressed, err := s.Send("demo", env); err != nil || suppressed {
		t.Fatalf("expected first send to succeed, err=%v suppressed=%v", err, suppressed)
	}
	env.ID = "msg_c2"
	_, suppressed, err := s.Send("demo", env)
	if err != nil {
		t.Fatalf("second send failed: %v", err)
	}
	if !suppressed {
		t.Fatalf("expected second send to be cooldown-suppressed")
	}

	read, err := s.Read("demo", "dev", ReadOptions{Limit: 10})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(read.Envelopes) != 1 {
		t.Fatalf("expected exactly one inbox record, got %d", len(read.Envelopes))
	}
}

func TestReadUnreadFilterExcludesAcked(t *testing.T) {
	s := newTestStore(t)
	env := Envelope{ID: "msg_u1", Type: "idle_notification", From: "lead", To: "dev"}
	if _, _, err := s.Send("demo", env); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := s.Ack("demo", "msg_u1", "dev", ""); err != nil {
		t.Fatalf("ack failed: %v", err)
	}
	read, err := s.Read("demo", "dev", ReadOptions{Unread: true, Limit: 10})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(read.Envelopes) != 0 {
		t.Fatalf("expected no unread envelopes after ack, got %d", len(read.Envelopes))
	}
}

func TestReadCursorPagination(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		env := Envelope{ID: idFor(i), Type: "idle_notification", From: "lead", To: "dev", CreatedAt: tsFor(i)}
		if _, _, err := s.Send("demo", env); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}
	first, err := s.Read("demo", "dev", ReadOptions{Limit: 2})
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	if len(first.Envelopes) != 2 || first.NextCursor == "" {
		t.Fatalf("expected 2 envelopes with a next cursor, got %+v", first)
	}
	second, err := s.Read("demo", "dev", ReadOptions{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(second.Envelopes) != 2 {
		t.Fatalf("expected 2 more envelopes, got %d", len(second.Envelopes))
	}
	if second.Envelopes[0].ID == first.Envelopes[len(first.Envelopes)-1].ID {
		t.Fatalf("expected second page to start after the cursor, not repeat it")
	}
}

func idFor(i int) string {
	return "msg_p" + string(rune('0'+i))
}

func tsFor(i int) string {
	return "2026-01-0" + string(rune('1'+i)) + "T00:00:00Z"
}
