package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/wuyan/lifescope/pkg/util"
)

// Access is what a route requires of the caller.
type Access int

const (
	Authenticated Access = iota
	Public
)

// AnyMethod matches every HTTP method in a Rule.
const AnyMethod = "*"

// Rule maps a method and path pattern to an access level. A pattern ending in
// "/**" matches its prefix and everything below it; any other pattern must
// match the path exactly.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
}

func (r Rule) matches(method, path string) bool {
	if r.Method != AnyMethod && !strings.EqualFold(r.Method, method) {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

// Policy is an ordered, immutable rule table. The first matching rule wins;
// unmatched requests require authentication.
type Policy struct {
	rules []Rule
}

// NewPolicy copies rules into a Policy.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: append([]Rule(nil), rules...)}
}

// DefaultPolicy is the service's route table.
func DefaultPolicy() *Policy {
	return NewPolicy(
		Rule{Method: fiber.MethodOptions, Pattern: "/**", Access: Public},
		Rule{Method: fiber.MethodPost, Pattern: "/api/auth/register", Access: Public},
		Rule{Method: fiber.MethodPost, Pattern: "/api/auth/login", Access: Public},
		Rule{Method: fiber.MethodGet, Pattern: "/health/**", Access: Public},
		Rule{Method: fiber.MethodGet, Pattern: "/metrics", Access: Public},
	)
}

// Decide returns the access level required for method and path.
func (p *Policy) Decide(method, path string) Access {
	for _, rule := range p.rules {
		if rule.matches(method, path) {
			return rule.Access
		}
	}
	return Authenticated
}

// Allow reports whether a caller, authenticated or not, may proceed.
func (p *Policy) Allow(method, path string, authenticated bool) bool {
	return authenticated || p.Decide(method, path) == Public
}

// Authorize gates requests according to the policy. It must run after AuthMiddleware.
func (p *Policy) Authorize() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, ok := PrincipalFromContext(c)
		if !p.Allow(c.Method(), c.Path(), ok) {
			return apperrors.NewUnauthorized()
		}
		return c.Next()
	}
}
