package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/kgreason"
	"github.com/soundprediction/kgreason/pkg/server/dto"
	"github.com/soundprediction/kgreason/pkg/store"
)

// maxImportBytes bounds import request bodies.
const maxImportBytes = 32 << 20

// AdminHandler handles knowledge base maintenance
type AdminHandler struct {
	kb kgreason.KGReason
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(kb kgreason.KGReason) *AdminHandler {
	return &AdminHandler{kb: kb}
}

// Optimize handles POST /api/v1/optimize
func (h *AdminHandler) Optimize(c *gin.Context) {
	c.JSON(http.StatusOK, h.kb.Optimize(c.Request.Context()))
}

// Stats handles GET /api/v1/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.kb.Stats())
}

// Export handles GET /api/v1/export?format=json|yaml
func (h *AdminHandler) Export(c *gin.Context) {
	format, err := store.ParseFormat(c.Query("format"))
	if err != nil {
		writeError(c, err)
		return
	}
	out, err := h.kb.Export(string(format))
	if err != nil {
		writeError(c, err)
		return
	}
	contentType := "application/json; charset=utf-8"
	if format == store.FormatYAML {
		contentType = "application/yaml; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, []byte(out))
}

// Import handles POST /api/v1/import?format=json|yaml. The request body is the
// snapshot itself.
func (h *AdminHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.kb.Import(c.Request.Context(), data, c.Query("format")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: h.kb.Stats()})
}
