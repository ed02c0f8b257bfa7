package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiError Error
	if errors.As(err, &apiError) {
		return c.Status(apiError.Code).JSON(apiError)
	}
	var valError ValidationError
	if errors.As(err, &valError) {
		return c.Status(valError.Status).JSON(valError)
	}

	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		apiError = NewError(fiberError.Code, fiberError.Message)
	} else {
		apiError = NewError(fiber.StatusInternalServerError, err.Error())
	}
	curTime := time.Now()
	fmt.Printf("%s Request failed with code %d and message: %s\n", &curTime, apiError.Code, apiError.Message)
	return c.Status(apiError.Code).JSON(apiError)
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e Error) Error() string {
	return e.Message
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid request",
	}
}

func ErrUnsupportedType(mimeType string) Error {
	return Error{
		Code:    fiber.StatusUnsupportedMediaType,
		Message: fmt.Sprintf("unsupported file type %q: allowed types are PDF, DOCX, PPTX and TXT", mimeType),
	}
}

func ErrFileTooLarge(size, limit int64) Error {
	return Error{
		Code:    fiber.StatusRequestEntityTooLarge,
		Message: fmt.Sprintf("file too large (%d bytes): maximum size is %d bytes", size, limit),
	}
}

func ErrNotFound[T any](arg T, resource string) Error {
	return Error{
		Code:    fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with %v not found", resource, arg),
	}
}

// ErrProcessing wraps downstream-processing failures in the user-facing
// apologetic message, keeping the underlying reason visible.
func ErrProcessing(stage string, err error) Error {
	return Error{
		Code:    fiber.StatusInternalServerError,
		Message: fmt.Sprintf("Sorry, %s failed: %v", stage, err),
	}
}
