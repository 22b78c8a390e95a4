package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/kgreason/pkg/manager"
	"github.com/soundprediction/kgreason/pkg/types"
)

// MaxQuestionLength bounds the reasoning question size.
const MaxQuestionLength = 4096

// ErrQuestionTooLong is returned when a question exceeds MaxQuestionLength.
var ErrQuestionTooLong = errors.New("question exceeds maximum length")

// ReasonRequest is the body of POST /api/v1/reason
type ReasonRequest struct {
	Question string `json:"question" binding:"required"`
}

// Validate performs validation on ReasonRequest
func (r *ReasonRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return errors.New("question cannot be empty")
	}
	if len(r.Question) > MaxQuestionLength {
		return ErrQuestionTooLong
	}
	return nil
}

// ReasonResponse carries both the structured result and its rendering.
type ReasonResponse struct {
	Result    *types.ReasoningResult `json:"result"`
	Formatted string                 `json:"formatted"`
}

// BatchRequest is the body of the batch ingestion endpoints.
type BatchRequest struct {
	Items []map[string]any `json:"items" binding:"required"`
}

// BatchResponse reports batch outcome counts.
type BatchResponse struct {
	manager.BatchResult
	Total int `json:"total"`
}

// CreateConceptResponse is returned when a concept is created.
type CreateConceptResponse struct {
	ID string `json:"id"`
}

// ConceptListResponse lists concepts.
type ConceptListResponse struct {
	Concepts []*types.Concept `json:"concepts"`
	Count    int              `json:"count"`
}

// Result represents a generic API result
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
