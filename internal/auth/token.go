package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/wuyan/lifescope/internal/config"
	"github.com/wuyan/lifescope/internal/domain"
)

// Verification failures. Verify always returns exactly one of these.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

// ErrKeyTooShort is returned when the signing secret is below 256 bits.
var ErrKeyTooShort = fmt.Errorf("signing key must be at least %d bytes", config.MinSecretBytes)

const usernameClaim = "username"

// SigningKey is the process-wide HMAC secret. It is immutable once built.
type SigningKey struct {
	secret []byte
}

// NewSigningKey copies secret into a key, rejecting anything shorter than 256 bits.
func NewSigningKey(secret []byte) (SigningKey, error) {
	if len(secret) < config.MinSecretBytes {
		return SigningKey{}, ErrKeyTooShort
	}
	return SigningKey{secret: append([]byte(nil), secret...)}, nil
}

// Claims describes JWT payload.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 access tokens.
type TokenCodec struct {
	key    SigningKey
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(tc *TokenCodec) {
		tc.now = now
	}
}

// NewTokenCodec builds a codec around an already validated key.
func NewTokenCodec(key SigningKey, ttl time.Duration, opts ...CodecOption) *TokenCodec {
	if ttl <= 0 {
		ttl = time.Hour
	}
	tc := &TokenCodec{key: key, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(tc)
	}
	tc.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	)
	return tc
}

// Issue signs a token for identity, returning it with its expiry.
func (tc *TokenCodec) Issue(identity domain.Identity) (string, time.Time, error) {
	now := tc.now()
	expiresAt := now.Add(tc.ttl)
	claims := &Claims{
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tc.key.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

// Verify checks signature and expiry and returns the identity the token was issued for.
// The signature is checked before time claims.
func (tc *TokenCodec) Verify(tokenStr string) (domain.Identity, error) {
	claims := &Claims{}
	parsed, err := tc.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tc.key.secret, nil
	})
	if err != nil {
		return domain.Identity{}, classify(err)
	}
	if !parsed.Valid {
		return domain.Identity{}, ErrMalformed
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: subject %q is not a user id", ErrMalformed, claims.Subject)
	}
	if claims.Username == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing %s claim", ErrMalformed, usernameClaim)
	}
	return domain.Identity{UserID: userID, Username: claims.Username}, nil
}

// ExtractUserID returns the user id of a fully verified token.
func (tc *TokenCodec) ExtractUserID(tokenStr string) (int64, error) {
	identity, err := tc.Verify(tokenStr)
	if err != nil {
		return 0, err
	}
	return identity.UserID, nil
}

// ExtractUsername returns the username of a fully verified token.
func (tc *TokenCodec) ExtractUsername(tokenStr string) (string, error) {
	identity, err := tc.Verify(tokenStr)
	if err != nil {
		return "", err
	}
	return identity.Username, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
