package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt and bounds how many hashes run at once.
type PasswordHasher struct {
	cost  int
	slots chan struct{}
}

// NewPasswordHasher builds a hasher with the configured cost; concurrency <= 0 means one slot.
func NewPasswordHasher(cost, concurrency int) *PasswordHasher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &PasswordHasher{cost: cost, slots: make(chan struct{}, concurrency)}
}

// Hash returns a salted bcrypt hash of password.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Matches reports whether password produced hash. A malformed hash or a
// cancelled context is a non-match.
func (h *PasswordHasher) Matches(ctx context.Context, password, hash string) bool {
	if err := h.acquire(ctx); err != nil {
		return false
	}
	defer h.release()

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *PasswordHasher) acquire(ctx context.Context) error {
	select {
	case h.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *PasswordHasher) release() {
	<-h.slots
}
