package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_Matches(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	for _, pw := range []string{"passw0rd", "Secret123", "a1b2c3d4e5"} {
		hash, err := h.Hash(ctx, pw)
		if err != nil {
			t.Fatalf("Hash(%q): %v", pw, err)
		}
		if hash == pw {
			t.Fatal("hash must not equal the plaintext")
		}
		if !h.Matches(ctx, pw, hash) {
			t.Errorf("Matches(%q) = false, want true", pw)
		}
		if h.Matches(ctx, pw+"x", hash) {
			t.Errorf("Matches(%q) with wrong password = true", pw)
		}
	}
}

func TestPasswordHasher_SaltedAndCostEmbedded(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 1)
	ctx := context.Background()

	first, err := h.Hash(ctx, "samePassword1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	second, err := h.Hash(ctx, "samePassword1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password should differ by salt")
	}
	cost, err := bcrypt.Cost([]byte(first))
	if err != nil || cost != bcrypt.MinCost {
		t.Errorf("embedded cost = %d, %v", cost, err)
	}
}

func TestPasswordHasher_MalformedHashIsNonMatch(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 1)
	for _, stored := range []string{"", "plaintext", "$2a$04$short", strings.Repeat("$", 60)} {
		if h.Matches(context.Background(), "anything1", stored) {
			t.Errorf("Matches against %q should be false", stored)
		}
	}
}

func TestPasswordHasher_HonorsCancellation(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 1)
	h.slots <- struct{}{} // occupy the only slot

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.Hash(ctx, "password1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if h.Matches(ctx, "password1", "$2a$04$abcdefghijklmnopqrstuuabcdefghijklmnopqrstuvwxyz01234") {
		t.Fatal("cancelled Matches must be a non-match")
	}
}
