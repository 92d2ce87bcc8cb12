package http

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const statusError = "error"

// shortenRequest is the body of a request to shorten a URL. ExpireAt is
// optional and stored as given.
type shortenRequest struct {
	LongURL  string     `json:"long_url" validate:"required,http_url"`
	ExpireAt *time.Time `json:"expire_at"`
}

type shortenResponse struct {
	ShortCode string `json:"short_code"`
}

type statsResponse struct {
	VisitCount int64 `json:"visit_count"`
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
	}

	urlNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "url not found",
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url", "http_url":
		return "invalid url"
	default:
		return "invalid value"
	}
}

func validationErrorResponse(err error) errorResponse {
	var errs []validationError

	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			errs = append(errs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  errs,
	}
}
