package sealer

import (
	"errors"
	"testing"
)

func TestSecretBox_RoundTrip(t *testing.T) {
	sb, err := New("correct horse battery staple")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	sealed, err := sb.Seal([]byte("access-token"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if sealed == "access-token" {
		t.Fatalf("value was not sealed")
	}

	plain, err := sb.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(plain) != "access-token" {
		t.Fatalf("expected access-token, got %q", plain)
	}
}

func TestSecretBox_WrongKey(t *testing.T) {
	a, _ := New("secret-a")
	b, _ := New("secret-b")

	sealed, _ := a.Seal([]byte("token"))
	if _, err := b.Open(sealed); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
}

func TestSecretBox_Garbage(t *testing.T) {
	sb, _ := New("secret")
	if _, err := sb.Open("not-sealed"); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
}

func TestNew_EmptySecret(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
