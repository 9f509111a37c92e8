// Package ui is the HTTP boundary: gin routes, bearer-token
// middleware and the mapping from error codes to response statuses.
// Handlers stay thin; everything below them returns plain data or an
// AppError and never sees HTTP.
package ui

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"datalens/internal/errors"
)

// statusForCode maps the error taxonomy onto HTTP statuses. Codes not
// listed here are treated as internal failures.
var statusForCode = map[string]int{
	errors.CodeInputFormat:         http.StatusBadRequest,
	errors.CodeEmptyInput:          http.StatusBadRequest,
	errors.CodeInsufficientData:    http.StatusBadRequest,
	errors.CodeColumnNotFound:      http.StatusBadRequest,
	errors.CodeUnsupportedMethod:   http.StatusBadRequest,
	errors.CodeNoApplicableColumns: http.StatusBadRequest,
	errors.CodeValidationError:     http.StatusBadRequest,
	errors.CodeUnauthorized:        http.StatusUnauthorized,
	errors.CodeForbidden:           http.StatusForbidden,
	errors.CodeNotFound:            http.StatusNotFound,
	errors.CodeInvalidFileType:     http.StatusBadRequest,
	errors.CodeFileTooLarge:        http.StatusRequestEntityTooLarge,
	errors.CodeDatabaseError:       http.StatusInternalServerError,
	errors.CodeConfigInvalid:       http.StatusInternalServerError,
	errors.CodeInternalError:       http.StatusInternalServerError,
}

// respondError translates any error into the JSON error envelope.
// Internal failures are logged with their cause but reported without
// it so details never leak to clients.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status, ok := statusForCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal server error"
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// bindStrict decodes a JSON body into the typed request, rejecting
// unknown fields so update payloads stay closed sets
func bindStrict(c *gin.Context, req interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return errors.ValidationError("invalid request body: " + err.Error())
	}
	return nil
}
