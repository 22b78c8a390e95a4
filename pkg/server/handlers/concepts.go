package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/kgreason"
	"github.com/soundprediction/kgreason/pkg/server/dto"
	"github.com/soundprediction/kgreason/pkg/types"
)

// ConceptHandler handles concept and relation administration
type ConceptHandler struct {
	kb kgreason.KGReason
}

// NewConceptHandler creates a new concept handler
func NewConceptHandler(kb kgreason.KGReason) *ConceptHandler {
	return &ConceptHandler{kb: kb}
}

// ListConcepts handles GET /api/v1/concepts?category=&q=
func (h *ConceptHandler) ListConcepts(c *gin.Context) {
	concepts := h.kb.ListConcepts(c.Query("category"), c.Query("q"))
	c.JSON(http.StatusOK, dto.ConceptListResponse{Concepts: concepts, Count: len(concepts)})
}

// GetConcept handles GET /api/v1/concepts/:id
func (h *ConceptHandler) GetConcept(c *gin.Context) {
	concept, err := h.kb.GetConcept(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, concept)
}

// CreateConcept handles POST /api/v1/concepts
func (h *ConceptHandler) CreateConcept(c *gin.Context) {
	var in types.ConceptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	id, err := h.kb.AddConcept(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreateConceptResponse{ID: id})
}

// UpdateConcept handles PUT /api/v1/concepts/:id
func (h *ConceptHandler) UpdateConcept(c *gin.Context) {
	var upd types.ConceptUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err.Error())
		return
	}
	id := c.Param("id")
	if err := h.kb.UpdateConcept(c.Request.Context(), id, upd); err != nil {
		writeError(c, err)
		return
	}
	concept, err := h.kb.GetConcept(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, concept)
}

// DeleteConcept handles DELETE /api/v1/concepts/:id
func (h *ConceptHandler) DeleteConcept(c *gin.Context) {
	if err := h.kb.DeleteConcept(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true})
}

// BatchConcepts handles POST /api/v1/concepts/batch
func (h *ConceptHandler) BatchConcepts(c *gin.Context) {
	var req dto.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res := h.kb.BatchProcessConcepts(c.Request.Context(), req.Items)
	c.JSON(http.StatusOK, dto.BatchResponse{BatchResult: res, Total: len(req.Items)})
}

// CreateRelation handles POST /api/v1/relations
func (h *ConceptHandler) CreateRelation(c *gin.Context) {
	var in types.RelationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.kb.AddRelation(c.Request.Context(), in); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Result{Success: true})
}

// BatchRelations handles POST /api/v1/relations/batch
func (h *ConceptHandler) BatchRelations(c *gin.Context) {
	var req dto.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res := h.kb.BatchProcessRelations(c.Request.Context(), req.Items)
	c.JSON(http.StatusOK, dto.BatchResponse{BatchResult: res, Total: len(req.Items)})
}
