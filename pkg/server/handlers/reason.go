package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/kgreason"
	"github.com/soundprediction/kgreason/pkg/server/dto"
)

// ReasonHandler serves reasoning requests
type ReasonHandler struct {
	kb kgreason.KGReason
}

// NewReasonHandler creates a new reason handler
func NewReasonHandler(kb kgreason.KGReason) *ReasonHandler {
	return &ReasonHandler{kb: kb}
}

// Reason handles POST /api/v1/reason
func (h *ReasonHandler) Reason(c *gin.Context) {
	var req dto.ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	result := h.kb.Reason(req.Question)
	c.JSON(http.StatusOK, dto.ReasonResponse{
		Result:    result,
		Formatted: h.kb.FormatResult(result),
	})
}
