package validation

import "testing"

func TestValidateRegisterInputValid(t *testing.T) {
	valid, details := ValidateRegisterInput("alice", "alice@example.com", "secret1", "secret1")
	if !valid {
		t.Fatalf("expected valid input, got details: %v", details)
	}
	if details != nil {
		t.Fatalf("expected no details, got %v", details)
	}
}

func TestValidateRegisterInputAccumulatesAllErrors(t *testing.T) {
	valid, details := ValidateRegisterInput("", "not-an-email", "abc", "xyz")
	if valid {
		t.Fatal("expected invalid input")
	}
	for _, field := range []string{"username", "email", "password", "confirmPassword"} {
		if _, ok := details[field]; !ok {
			t.Errorf("expected error for field %q, details: %v", field, details)
		}
	}
}

func TestValidateRegisterInputWhitespaceUsername(t *testing.T) {
	valid, details := ValidateRegisterInput("   ", "alice@example.com", "secret1", "secret1")
	if valid {
		t.Fatal("whitespace-only username must be rejected")
	}
	if _, ok := details["username"]; !ok {
		t.Fatalf("expected username error, got %v", details)
	}
}

func TestValidateRegisterInputPasswordMismatch(t *testing.T) {
	valid, details := ValidateRegisterInput("alice", "alice@example.com", "secret1", "secret2")
	if valid {
		t.Fatal("mismatched passwords must be rejected")
	}
	if _, ok := details["confirmPassword"]; !ok {
		t.Fatalf("expected confirmPassword error, got %v", details)
	}
}

func TestValidateRegisterInputShortPassword(t *testing.T) {
	valid, details := ValidateRegisterInput("alice", "alice@example.com", "abc", "abc")
	if valid {
		t.Fatal("short password must be rejected")
	}
	if _, ok := details["password"]; !ok {
		t.Fatalf("expected password error, got %v", details)
	}
}

func TestValidateLoginInput(t *testing.T) {
	if valid, _ := ValidateLoginInput("alice", "whatever"); !valid {
		t.Fatal("expected valid login input")
	}

	valid, details := ValidateLoginInput("", "")
	if valid {
		t.Fatal("empty login input must be rejected")
	}
	if _, ok := details["username"]; !ok {
		t.Errorf("expected username error, got %v", details)
	}
	if _, ok := details["password"]; !ok {
		t.Errorf("expected password error, got %v", details)
	}
}
