package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/kgreason/pkg/server/dto"
	"github.com/soundprediction/kgreason/pkg/types"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrConceptNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, types.ErrDuplicateName),
		errors.Is(err, types.ErrAmbiguousName),
		errors.Is(err, types.ErrDuplicateID):
		return http.StatusConflict, "conflict"
	case errors.Is(err, types.ErrMalformedSnapshot),
		errors.Is(err, types.ErrUnsupportedFormat):
		return http.StatusBadRequest, "invalid_payload"
	case errors.Is(err, types.ErrEmptyID),
		errors.Is(err, types.ErrEmptyName),
		errors.Is(err, types.ErrEmptyRelation),
		errors.Is(err, types.ErrInvalidStrength),
		errors.Is(err, types.ErrMissingField),
		errors.Is(err, types.ErrInvalidFieldType),
		errors.Is(err, types.ErrRelationRejected):
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error(), Code: status})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: message, Code: http.StatusBadRequest})
}
