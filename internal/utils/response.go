package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// PaginatedResponse sends one page of a list with its pagination block
func PaginatedResponse(c *fiber.Ctx, data interface{}, pagination interface{}) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"data":       data,
		"pagination": pagination,
	})
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": timestamp(),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// RejectResponse sends a refused submission. code is machine readable and
// fieldErrors, when present, maps field ids to messages.
func RejectResponse(c *fiber.Ctx, status int, code, message string, fieldErrors map[string]string) error {
	body := fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"code":      code,
		"timestamp": timestamp(),
		"url":       c.OriginalURL(),
		"type":      "submission",
	}
	if len(fieldErrors) > 0 {
		body["fieldErrors"] = fieldErrors
	}
	return c.Status(status).JSON(body)
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": timestamp(),
		"url":       c.OriginalURL(),
	})
}

// MutationSuccessResponse sends a success response for mutations that
// return no entity
func MutationSuccessResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"message":   message,
		"timestamp": timestamp(),
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status      int               `json:"status"`
	Message     string            `json:"message"`
	Ok          bool              `json:"ok"`
	Code        string            `json:"code,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Timestamp   string            `json:"timestamp"`
	URL         string            `json:"url"`
	Type        string            `json:"type,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
