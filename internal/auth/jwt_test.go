package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	s, err := NewSigner("secret")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	token, err := s.Generate("cli", time.Hour)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	sub, err := s.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sub != "cli" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestParseRejects(t *testing.T) {
	s, _ := NewSigner("secret")
	other, _ := NewSigner("other")

	foreign, _ := other.Generate("cli", time.Hour)
	expired, _ := s.Generate("cli", -time.Minute)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      expired,
	} {
		if _, err := s.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestEmptySecret(t *testing.T) {
	if _, err := NewSigner(""); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("err = %v", err)
	}
}
