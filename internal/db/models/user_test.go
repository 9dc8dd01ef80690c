package models

import "testing"

// ---------------------------------------------------------------------------
// User.FullName
// ---------------------------------------------------------------------------

func TestFullName_BothNames(t *testing.T) {
	u := &User{Email: "alice@example.com", FirstName: "Alice", LastName: "Adams"}
	if got := u.FullName(); got != "Alice Adams" {
		t.Errorf("FullName() = %q, want %q", got, "Alice Adams")
	}
}

func TestFullName_FirstNameOnly(t *testing.T) {
	u := &User{Email: "alice@example.com", FirstName: "Alice"}
	if got := u.FullName(); got != "Alice" {
		t.Errorf("FullName() = %q, want %q", got, "Alice")
	}
}

func TestFullName_FallsBackToEmail(t *testing.T) {
	u := &User{Email: "alice@example.com"}
	if got := u.FullName(); got != "alice@example.com" {
		t.Errorf("FullName() = %q, want %q", got, "alice@example.com")
	}
}

func TestFullName_LastNameOnlyFallsBackToEmail(t *testing.T) {
	u := &User{Email: "bob@example.com", LastName: "Brown"}
	if got := u.FullName(); got != "bob@example.com" {
		t.Errorf("FullName() = %q, want %q", got, "bob@example.com")
	}
}
