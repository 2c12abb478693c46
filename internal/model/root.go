package model

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ResponseBody defines the body wrapper used for all endpoint responses.
type ResponseBody struct {
	Result  interface{} `json:"result,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Status  string      `json:"status"`
}

// SuccessResponse wraps a result in the standard response body.
func SuccessResponse(result interface{}, code int) ResponseBody {
	return ResponseBody{
		Result: result,
		Status: http.StatusText(code),
	}
}

// Success sends a response body containing the given result to the caller.
func Success(ctx echo.Context, result interface{}, code int) error {
	return ctx.JSON(code, SuccessResponse(result, code))
}

// SuccessMessage sends a response body containing an informational message to the caller.
func SuccessMessage(ctx echo.Context, msg string, code int) error {
	return ctx.JSON(code, ResponseBody{
		Message: msg,
		Status:  http.StatusText(code),
	})
}

// Error sends a response body describing an error to the caller.
func Error(ctx echo.Context, msg string, code int) error {
	return ctx.JSON(code, ResponseBody{
		Error:  msg,
		Status: http.StatusText(code),
	})
}
