package notify

import (
	"testing"
	"time"
)

func TestShow_AppendsInOrder(t *testing.T) {
	store := NewStore()

	store.Show("Success", "first", SeveritySuccess, time.Second)
	store.Show("Failure", "second", SeverityFailure, time.Second)

	messages := store.Messages()
	if len(messages) != 2 {
		t.Fatalf("len = %d, want 2", len(messages))
	}
	if messages[0].Body != "first" || messages[1].Body != "second" {
		t.Fatalf("order = %q, %q", messages[0].Body, messages[1].Body)
	}
	if messages[0].Severity != SeveritySuccess || messages[1].Severity != SeverityFailure {
		t.Fatalf("severities = %q, %q", messages[0].Severity, messages[1].Severity)
	}
}

func TestShow_SameInstantMessagesStayDistinct(t *testing.T) {
	store := NewStore()
	frozen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return frozen }

	first := store.Show("Failure", "a", SeverityFailure, time.Second)
	second := store.Show("Failure", "a", SeverityFailure, time.Second)

	if first.Seq == second.Seq {
		t.Fatal("messages created in the same instant share a removal key")
	}

	store.Dismiss(first)
	messages := store.Messages()
	if len(messages) != 1 {
		t.Fatalf("len = %d, want 1", len(messages))
	}
	if messages[0].Seq != second.Seq {
		t.Fatal("dismiss removed the wrong message")
	}
}

func TestDismiss_AbsentMessageIsNoOp(t *testing.T) {
	store := NewStore()
	msg := store.Show("Success", "once", SeveritySuccess, time.Second)

	store.Dismiss(msg)
	store.Dismiss(msg)

	if store.Len() != 0 {
		t.Fatalf("len = %d, want 0", store.Len())
	}
}

func TestOnChange_FiresOnShowAndDismissOnly(t *testing.T) {
	store := NewStore()
	calls := 0
	store.OnChange(func() { calls++ })

	msg := store.Show("Success", "x", SeveritySuccess, time.Second)
	if calls != 1 {
		t.Fatalf("calls after show = %d", calls)
	}

	store.Dismiss(msg)
	if calls != 2 {
		t.Fatalf("calls after dismiss = %d", calls)
	}

	store.Dismiss(msg) // already gone, must not fire
	if calls != 2 {
		t.Fatalf("calls after redundant dismiss = %d", calls)
	}
}

func TestReset_DropsAllMessages(t *testing.T) {
	store := NewStore()
	store.Show("Success", "a", SeveritySuccess, time.Second)
	store.Show("Warning", "b", SeverityWarning, time.Second)

	store.Reset()
	if store.Len() != 0 {
		t.Fatalf("len = %d, want 0", store.Len())
	}
}
