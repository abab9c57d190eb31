package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/wuyan/lifescope/pkg/util"
)

func TestDefaultPolicy_Decide(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		method, path string
		want         Access
	}{
		{fiber.MethodOptions, "/api/data/upload", Public},
		{fiber.MethodOptions, "/", Public},
		{fiber.MethodPost, "/api/auth/register", Public},
		{fiber.MethodPost, "/api/auth/login", Public},
		{fiber.MethodGet, "/api/auth/login", Authenticated},
		{fiber.MethodGet, "/api/auth/me", Authenticated},
		{fiber.MethodGet, "/health/live", Public},
		{fiber.MethodGet, "/health", Public},
		{fiber.MethodGet, "/healthz", Authenticated},
		{fiber.MethodGet, "/metrics", Public},
		{fiber.MethodPost, "/api/data/upload", Authenticated},
		{fiber.MethodGet, "/api/reports/weekly", Authenticated},
		{fiber.MethodGet, "/unknown", Authenticated},
	}

	for _, tt := range tests {
		if got := p.Decide(tt.method, tt.path); got != tt.want {
			t.Errorf("Decide(%s %s) = %v, want %v", tt.method, tt.path, got, tt.want)
		}
	}
}

func TestPolicy_FirstMatchWins(t *testing.T) {
	p := NewPolicy(
		Rule{Method: AnyMethod, Pattern: "/admin/**", Access: Authenticated},
		Rule{Method: AnyMethod, Pattern: "/**", Access: Public},
	)
	if p.Decide(fiber.MethodGet, "/admin/users") != Authenticated {
		t.Error("earlier rule should win")
	}
	if p.Decide(fiber.MethodGet, "/blog") != Public {
		t.Error("catch-all public rule should apply")
	}
}

func TestPolicy_IsImmutable(t *testing.T) {
	rules := []Rule{{Method: AnyMethod, Pattern: "/open", Access: Public}}
	p := NewPolicy(rules...)
	rules[0].Access = Authenticated
	if p.Decide(fiber.MethodGet, "/open") != Public {
		t.Error("mutating the input slice must not change the policy")
	}
}

func TestPolicy_Authorize(t *testing.T) {
	p := DefaultPolicy()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var de *apperrors.DomainError
			if errors.As(err, &de) {
				return c.SendStatus(de.HTTPStatus)
			}
			return c.SendStatus(http.StatusInternalServerError)
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-Test-User") != "" {
			c.Locals(principalKey, Principal{UserID: 1, Username: "u"})
		}
		return c.Next()
	})
	app.Use(p.Authorize())
	app.All("/*", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	tests := []struct {
		name   string
		method string
		path   string
		user   bool
		want   int
	}{
		{"public login anonymous", http.MethodPost, "/api/auth/login", false, http.StatusOK},
		{"protected anonymous", http.MethodGet, "/api/auth/me", false, http.StatusUnauthorized},
		{"protected authenticated", http.MethodGet, "/api/auth/me", true, http.StatusOK},
		{"preflight anonymous", http.MethodOptions, "/api/data/batch", false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.user {
				req.Header.Set("X-Test-User", "1")
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
