package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestToDomainError(t *testing.T) {
	cause := errors.New("pq: connection refused")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"bad request", NewBadRequest("username already exists"), http.StatusBadRequest, CodeBadRequest, "username already exists"},
		{"wrapped bad request", fmt.Errorf("register: %w", NewBadRequest("wrong password")), http.StatusBadRequest, CodeBadRequest, "wrong password"},
		{"unauthorized", NewUnauthorized(), http.StatusUnauthorized, CodeUnauthorized, MessageUnauthorized},
		{"fiber client error", fiber.NewError(http.StatusNotFound, "Cannot GET /nope"), http.StatusBadRequest, CodeBadRequest, "Cannot GET /nope"},
		{"fiber server error", fiber.ErrServiceUnavailable, http.StatusInternalServerError, CodeInternal, MessageInternal},
		{"plain error", cause, http.StatusInternalServerError, CodeInternal, MessageInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.HTTPStatus != tt.wantStatus || got.Code != tt.wantCode || got.Message != tt.wantMsg {
				t.Fatalf("got {%d %s %q}, want {%d %s %q}", got.HTTPStatus, got.Code, got.Message, tt.wantStatus, tt.wantCode, tt.wantMsg)
			}
		})
	}

	if got := ToDomainError(cause); !errors.Is(got, cause) {
		t.Error("internal error should keep its cause for logging")
	}
	if ToDomainError(nil) != nil {
		t.Error("nil error should map to nil")
	}
}

func TestIsBadRequest(t *testing.T) {
	if !IsBadRequest(fmt.Errorf("x: %w", NewBadRequest("dup"))) {
		t.Error("expected wrapped bad request to be detected")
	}
	if IsBadRequest(NewInternalError(nil)) {
		t.Error("internal error is not a bad request")
	}
}
