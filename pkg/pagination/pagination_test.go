package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("expected default limit for negative input, got %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 50); got != MaxLimit {
		t.Fatalf("expected cap at max limit, got %d", got)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("expected passthrough, got %d", got)
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("expected buffered limit 11, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		JoinedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		ID:       uuid.New(),
	}

	encoded := EncodeCursor(original)
	decoded, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("ParseCursor failed: %v", err)
	}
	if decoded == nil {
		t.Fatal("expected cursor, got nil")
	}
	if !decoded.JoinedAt.Equal(original.JoinedAt) {
		t.Fatalf("timestamp mismatch: %v vs %v", decoded.JoinedAt, original.JoinedAt)
	}
	if decoded.ID != original.ID {
		t.Fatalf("id mismatch: %s vs %s", decoded.ID, original.ID)
	}
}

func TestParseCursorEmptyAndInvalid(t *testing.T) {
	if cursor, err := ParseCursor("  "); err != nil || cursor != nil {
		t.Fatalf("blank cursor should be nil/nil, got %v/%v", cursor, err)
	}
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	if _, err := ParseCursor("aGVsbG8="); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
