package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{NotFound("lesson missing"), KindNotFound},
		{Conflict("already enrolled"), KindConflict},
		{AttemptsExhausted("no attempts left"), KindAttemptsExhausted},
		{UpstreamJudge("bad verdict"), KindUpstreamJudge},
		{Storage(errors.New("connection refused")), KindStorage},
		{errors.New("plain error"), KindStorage},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("answering lesson: %w", AttemptsExhausted("no attempts left"))

	if !IsKind(err, KindAttemptsExhausted) {
		t.Fatalf("wrapped error lost its kind: %v", err)
	}
	if IsKind(err, KindNotFound) {
		t.Fatal("IsKind matched the wrong kind")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(KindConflict, cause)

	if !errors.Is(err, cause) {
		t.Fatal("Wrap hid the underlying cause")
	}
}
