package utils

import "github.com/gofiber/fiber/v2"

// ErrorResponse is the body returned for every client-facing failure.
// Successful responses carry the record (or array of records) directly.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// SendJSON writes the payload with the provided HTTP status code.
func SendJSON(c *fiber.Ctx, status int, payload interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(payload)
}

// SendError sends an error response with the given status code and detail message.
func SendError(c *fiber.Ctx, status int, detail string) error {
	if detail == "" {
		detail = "error"
	}

	return c.Status(status).JSON(ErrorResponse{Detail: detail})
}
