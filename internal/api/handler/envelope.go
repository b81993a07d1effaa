package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the wrapper every API reply is rendered in.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Fail builds an unsuccessful envelope.
func Fail(errMsg, message string) Envelope {
	return Envelope{Success: false, Error: errMsg, Message: message}
}

func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, Envelope{Success: true, Data: data})
}

func respondList[T any](c echo.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Count: &n})
}

func respondDeleted(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: struct{}{}, Message: message})
}
