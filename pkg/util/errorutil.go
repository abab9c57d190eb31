package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes exposed in logs and metrics.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
)

// Fixed client-facing messages.
const (
	MessageUnauthorized = "token invalid or expired"
	MessageInternal     = "internal server error"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewBadRequest reports a business-rule violation whose message is safe to show the caller.
func NewBadRequest(message string) error {
	return NewDomainError(CodeBadRequest, message, http.StatusBadRequest, nil)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeBadRequest, message, http.StatusBadRequest, details)
}

// NewUnauthorized never carries token details; the client always sees the same text.
func NewUnauthorized() error {
	return NewDomainError(CodeUnauthorized, MessageUnauthorized, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    MessageInternal,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsBadRequest reports whether err is a business-rule violation.
func IsBadRequest(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == CodeBadRequest
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < http.StatusInternalServerError {
		return NewDomainError(CodeBadRequest, fiberErr.Message, http.StatusBadRequest, nil)
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    MessageInternal,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
