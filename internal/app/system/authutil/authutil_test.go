package authutil

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name string
		pw   string
		want error
	}{
		{"empty", "", ErrPasswordTooShort},
		{"one under minimum", "abcde", ErrPasswordTooShort},
		{"exactly minimum", "k3ys4f", nil},
		{"typical", "open-house-2024", nil},
		{"exactly maximum", strings.Repeat("x", MaxPasswordLength), nil},
		{"one over maximum", strings.Repeat("x", MaxPasswordLength+1), ErrPasswordTooLong},
		{"deny-listed", "letmein", ErrPasswordCommon},
		{"deny-listed numeric", "12345678", ErrPasswordCommon},
		{"deny-listed any case", "PassWord", ErrPasswordCommon},
		{"deny-listed word inside longer password", "password-for-listings", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePassword(tt.pw); !errors.Is(err, tt.want) {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.pw, err, tt.want)
			}
		})
	}
}

func TestPasswordRules_MentionsBounds(t *testing.T) {
	rules := PasswordRules()
	for _, want := range []string{"6", "128"} {
		if !strings.Contains(rules, want) {
			t.Errorf("PasswordRules() = %q, want it to mention %s", rules, want)
		}
	}
}

func TestHashAndCheck(t *testing.T) {
	const pw = "agent-secret-77"

	hash, err := HashPassword(pw)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", hash)
	}

	if !CheckPassword(pw, hash) {
		t.Error("CheckPassword rejected the right password")
	}
	for _, wrong := range []string{"", "agent-secret-78", strings.ToUpper(pw)} {
		if CheckPassword(wrong, hash) {
			t.Errorf("CheckPassword accepted %q", wrong)
		}
	}
	if CheckPassword(pw, "plain-text-not-a-hash") {
		t.Error("CheckPassword accepted a malformed hash")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same-input-1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("same-input-1")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of one password should differ")
	}
}
