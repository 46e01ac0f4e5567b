package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	t.Run("matches constraint name", func(t *testing.T) {
		err := fmt.Errorf("insert user: %w", &pq.Error{Code: "23505", Constraint: "users_email_key"})
		if !isUniqueViolation(err, "users_email_key") {
			t.Fatalf("expected true for wrapped unique violation")
		}
		if isUniqueViolation(err, "groups_invite_code_key") {
			t.Fatalf("expected false for another constraint")
		}
		if !isUniqueViolation(err, "") {
			t.Fatalf("expected true when any constraint is accepted")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		err := &pq.Error{Code: "23503", Constraint: "users_email_key"}
		if isUniqueViolation(err, "users_email_key") {
			t.Fatalf("expected false for foreign key violation")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(sql.ErrConnDone) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestNullableInts(t *testing.T) {
	t.Parallel()

	if got := intFromNull(nullInt(nil)); got != nil {
		t.Fatalf("expected nil round trip, got %v", *got)
	}
	three := 3
	got := intFromNull(nullInt(&three))
	if got == nil || *got != 3 {
		t.Fatalf("unexpected value: got=%v want=3", got)
	}
}
