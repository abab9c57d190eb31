package validation

import (
	"strings"
	"testing"

	apperrors "github.com/wuyan/lifescope/pkg/util"
)

type signup struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

type sample struct {
	Day  string `json:"day" validate:"required,datetime=2006-01-02"`
	Mins int    `json:"mins" validate:"min=1"`
}

func TestStruct_Signup(t *testing.T) {
	tests := []struct {
		name      string
		in        signup
		badFields []string
	}{
		{"valid", signup{"alice_01", "a@example.com", "passw0rd"}, nil},
		{"han username", signup{"小明", "a@example.com", "passw0rd"}, nil},
		{"too short username", signup{"a", "a@example.com", "passw0rd"}, []string{"username"}},
		{"symbol in username", signup{"al-ice", "a@example.com", "passw0rd"}, []string{"username"}},
		{"bad email", signup{"alice", "nope", "passw0rd"}, []string{"email"}},
		{"password no digit", signup{"alice", "a@example.com", "password"}, []string{"password"}},
		{"password no letter", signup{"alice", "a@example.com", "12345678"}, []string{"password"}},
		{"password too short", signup{"alice", "a@example.com", "pass1"}, []string{"password"}},
		{"password symbol", signup{"alice", "a@example.com", "passw0rd!"}, []string{"password"}},
		{"all missing", signup{}, []string{"username", "email", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if len(tt.badFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.IsBadRequest(err) {
				t.Fatalf("expected bad request, got %v", err)
			}
			de := apperrors.ToDomainError(err)
			fields := de.Details["fields"].([]FieldError)
			if len(fields) != len(tt.badFields) {
				t.Fatalf("fields = %+v, want %v", fields, tt.badFields)
			}
			for i, f := range tt.badFields {
				if fields[i].Field != f {
					t.Errorf("field[%d] = %s, want %s", i, fields[i].Field, f)
				}
				if !strings.Contains(de.Message, f+": ") {
					t.Errorf("message %q does not mention %s", de.Message, f)
				}
			}
		})
	}
}

func TestEach(t *testing.T) {
	if err := Each([]sample{{"2026-01-02", 5}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Each([]sample{}); !apperrors.IsBadRequest(err) {
		t.Fatalf("empty slice should be rejected, got %v", err)
	}

	err := Each([]sample{{"2026-01-02", 5}, {"02/01/2026", 0}})
	if !apperrors.IsBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
	fields := apperrors.ToDomainError(err).Details["fields"].([]FieldError)
	if len(fields) != 2 || fields[0].Field != "[1].day" || fields[1].Field != "[1].mins" {
		t.Fatalf("fields = %+v", fields)
	}
}
