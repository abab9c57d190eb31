// Package response defines the envelope every endpoint answers with.
package response

import (
	"github.com/gofiber/fiber/v2"
)

// DefaultMessage is used for successful responses without a custom message.
const DefaultMessage = "OK"

// Envelope is the single response shape of every endpoint. Data is null on failure.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// OK writes a 200 success envelope with the default message.
func OK[T any](c *fiber.Ctx, data T) error {
	return OKWithMessage(c, DefaultMessage, data)
}

// OKWithMessage writes a 200 success envelope.
func OKWithMessage[T any](c *fiber.Ctx, message string, data T) error {
	return c.Status(fiber.StatusOK).JSON(Envelope[T]{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    &data,
	})
}

// Failure writes an error envelope. Only the error translator calls it.
func Failure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope[struct{}]{
		Success: false,
		Code:    status,
		Message: message,
	})
}
