package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wuyan/lifescope/internal/domain"
)

const (
	principalKey = "auth_principal"
	bearerPrefix = "Bearer "
)

type principalCtxKey struct{}

// Principal represents the authenticated caller.
type Principal struct {
	UserID   int64
	Username string
}

// Verifier is the part of TokenCodec the pipeline depends on.
type Verifier interface {
	Verify(token string) (domain.Identity, error)
}

// AuthOutcome labels what the authentication stage concluded for a request.
type AuthOutcome string

const (
	OutcomeAnonymous     AuthOutcome = "anonymous"
	OutcomeAuthenticated AuthOutcome = "authenticated"
	OutcomeRejected      AuthOutcome = "rejected"
)

// Authenticate resolves an Authorization header value into a principal.
// A missing header, a non-Bearer scheme or a token that fails verification
// all leave the request anonymous; err reports the verification failure, if any.
func Authenticate(verifier Verifier, header string) (principal Principal, ok bool, err error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return Principal{}, false, nil
	}
	identity, err := verifier.Verify(header[len(bearerPrefix):])
	if err != nil {
		return Principal{}, false, err
	}
	return Principal{UserID: identity.UserID, Username: identity.Username}, true, nil
}

// AuthMiddleware attaches the caller's principal when a valid bearer token is present.
// It never rejects a request; access decisions belong to the Policy.
type AuthMiddleware struct {
	verifier Verifier
	logger   *zap.Logger
	observe  func(AuthOutcome)
}

// NewAuthMiddleware constructs middleware. observe may be nil.
func NewAuthMiddleware(verifier Verifier, logger *zap.Logger, observe func(AuthOutcome)) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observe == nil {
		observe = func(AuthOutcome) {}
	}
	return &AuthMiddleware{verifier: verifier, logger: logger, observe: observe}
}

// Handle runs the authentication stage.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, ok, err := Authenticate(m.verifier, c.Get(fiber.HeaderAuthorization))
	switch {
	case err != nil:
		m.logger.Debug("bearer token rejected", zap.String("path", c.Path()), zap.Error(err))
		m.observe(OutcomeRejected)
	case ok:
		c.Locals(principalKey, principal)
		c.SetUserContext(WithPrincipal(c.UserContext(), principal))
		m.observe(OutcomeAuthenticated)
	default:
		m.observe(OutcomeAnonymous)
	}
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (Principal, bool) {
	principal, ok := c.Locals(principalKey).(Principal)
	return principal, ok
}

// WithPrincipal stores principal on ctx for code below the HTTP layer.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, principal)
}

// PrincipalFrom reads the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalCtxKey{}).(Principal)
	return principal, ok
}
