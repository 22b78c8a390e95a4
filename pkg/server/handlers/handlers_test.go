package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/kgreason"
	"github.com/soundprediction/kgreason/pkg/graph"
	"github.com/soundprediction/kgreason/pkg/reasoning"
	"github.com/soundprediction/kgreason/pkg/server/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(kb kgreason.KGReason) *gin.Engine {
	r := gin.New()
	ch := NewConceptHandler(kb)
	ah := NewAdminHandler(kb)
	r.POST("/reason", NewReasonHandler(kb).Reason)
	r.GET("/concepts", ch.ListConcepts)
	r.POST("/concepts", ch.CreateConcept)
	r.POST("/concepts/batch", ch.BatchConcepts)
	r.GET("/concepts/:id", ch.GetConcept)
	r.PUT("/concepts/:id", ch.UpdateConcept)
	r.DELETE("/concepts/:id", ch.DeleteConcept)
	r.POST("/relations", ch.CreateRelation)
	r.POST("/relations/batch", ch.BatchRelations)
	r.POST("/optimize", ah.Optimize)
	r.GET("/export", ah.Export)
	r.POST("/import", ah.Import)
	return r
}

func seeded() *kgreason.Client {
	return kgreason.NewClient(graph.NewInitialKnowledgeBase(), nil, nil, nil)
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestReasonEndpoint(t *testing.T) {
	r := newRouter(seeded())

	w := do(t, r, http.MethodPost, "/reason", `{"question": "Can deep learning threaten privacy?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ReasonResponse
	decode(t, w, &resp)
	require.NotNil(t, resp.Result)
	assert.NotEmpty(t, resp.Result.Concepts)
	assert.Contains(t, resp.Formatted, "Identified concepts:")

	w = do(t, r, http.MethodPost, "/reason", `{"question": "zzz qqq"}`)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Empty(t, resp.Result.Concepts)
	assert.Zero(t, resp.Result.Confidence)
	assert.Equal(t, reasoning.NoConceptsMessage, resp.Formatted)

	w = do(t, r, http.MethodPost, "/reason", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConceptCRUD(t *testing.T) {
	r := newRouter(seeded())

	w := do(t, r, http.MethodPost, "/concepts", `{"name": "Fairness", "description": "equal treatment", "category": "philosophy"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.CreateConceptResponse
	decode(t, w, &created)
	assert.Equal(t, "c11", created.ID)

	w = do(t, r, http.MethodPost, "/concepts", `{"name": "fairness"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/concepts", `{"description": "no name"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/concepts/c11", `{"category": "ethics"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated map[string]interface{}
	decode(t, w, &updated)
	assert.Equal(t, "ethics", updated["category"])
	assert.Equal(t, "Fairness", updated["name"])

	w = do(t, r, http.MethodPut, "/concepts/c404", `{"category": "ethics"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/concepts?category=ethics", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.ConceptListResponse
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	w = do(t, r, http.MethodDelete, "/concepts/c11", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/concepts/c11", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRelationEndpoints(t *testing.T) {
	kb := seeded()
	r := newRouter(kb)

	w := do(t, r, http.MethodPost, "/relations", `{"source_name": "bias", "target_name": "ethics", "relation_type": "challenges", "strength": 0.6}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, kb.Graph().HasEdge("c9", "c8"))

	w = do(t, r, http.MethodPost, "/relations", `{"source_name": "bias", "target_name": "nothing", "relation_type": "x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/relations", `{"source_name": "bias", "target_name": "ethics", "relation_type": "x", "strength": 3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/relations/batch", `{"items": [
		{"source_name": "Privacy", "target_name": "Ethics", "relation_type": "part of"},
		{"source_name": "Privacy", "target_name": "Ethics"}
	]}`)
	require.Equal(t, http.StatusOK, w.Code)
	var batch dto.BatchResponse
	decode(t, w, &batch)
	assert.Equal(t, 1, batch.Success)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, 2, batch.Total)
}

func TestBatchConceptsEndpoint(t *testing.T) {
	kb := seeded()
	r := newRouter(kb)

	w := do(t, r, http.MethodPost, "/concepts/batch", `{"items": [
		{"name": "Fairness", "description": "d", "category": "philosophy"},
		{"name": "Trust", "description": "d"},
		{"name": "Privacy", "description": "dup", "category": "security"}
	]}`)
	require.Equal(t, http.StatusOK, w.Code)
	var batch dto.BatchResponse
	decode(t, w, &batch)
	assert.Equal(t, 1, batch.Success)
	assert.Equal(t, 2, batch.Failed)
	assert.Equal(t, 11, kb.Stats().Concepts)

	w = do(t, r, http.MethodPost, "/concepts/batch", `{"items": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportImportEndpoints(t *testing.T) {
	src := newRouter(seeded())
	w := do(t, src, http.MethodGet, "/export?format=json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	exported := w.Body.String()

	w = do(t, src, http.MethodGet, "/export?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, src, http.MethodGet, "/export?format=yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "concepts:"))

	dstKB := kgreason.NewClient(graph.New(), nil, nil, nil)
	dst := newRouter(dstKB)
	w = do(t, dst, http.MethodPost, "/import?format=json", exported)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, dstKB.Stats().Concepts)
	assert.Equal(t, 10, dstKB.Stats().Edges)

	w = do(t, dst, http.MethodPost, "/import?format=json", `{"concepts": [{"id": "", "name": "x"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 10, dstKB.Stats().Concepts)
}

func TestOptimizeEndpoint(t *testing.T) {
	r := newRouter(seeded())
	w := do(t, r, http.MethodPost, "/optimize", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]int
	decode(t, w, &stats)
	assert.Equal(t, 0, stats["duplicate_concepts_removed"])
	assert.Contains(t, stats, "orphaned_concepts_count")
}
