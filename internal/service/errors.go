package service

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gitlab.com/dirk.krummacker/persons-service/internal/store"
	api "gitlab.com/dirk.krummacker/persons-service/pkg/model"
)

// ErrValidation matches every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a required field that is missing or empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// statusFor maps an error onto the HTTP status code of the response.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateEmail):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError aborts the request with the status code and message belonging to err.
func respondWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, api.ErrorBody{Error: errorMessage(err)})
}

// errorMessage returns the message sent to the client for err.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "Person not found"
	case errors.Is(err, store.ErrDuplicateEmail):
		return "Email already exists"
	default:
		return err.Error()
	}
}
