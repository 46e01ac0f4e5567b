package competition

import (
	"errors"
	"testing"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := Validate(Competition{Name: "x"}); !errors.Is(err, ErrNoLeagues) {
		t.Fatalf("expected ErrNoLeagues, got %v", err)
	}

	dup := Competition{Leagues: []match.League{{ID: 1, Season: 2026}, {ID: 1, Season: 2026}}}
	if err := Validate(dup); err == nil {
		t.Fatalf("expected duplicate league error")
	}

	ok := Competition{Leagues: []match.League{{ID: 1, Season: 2026}, {ID: 1, Season: 2025}}}
	if err := Validate(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok.Scope().Unrestricted() {
		t.Fatalf("competition scope must be restricted")
	}
}
