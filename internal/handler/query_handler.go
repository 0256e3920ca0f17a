package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/docchat/docchat/internal/pkg/response"
	"github.com/docchat/docchat/internal/service"
	"github.com/docchat/docchat/internal/vectorindex"
)

type QueryHandler struct {
	query *service.QueryService
}

func NewQueryHandler(query *service.QueryService) *QueryHandler {
	return &QueryHandler{query: query}
}

type queryRequest struct {
	Query    string `json:"query"`
	TopK     int    `json:"top_k"`
	Filename string `json:"filename"`
}

type queryResponse struct {
	Query   string              `json:"query"`
	Matches []vectorindex.Match `json:"matches"`
}

// Query runs retrieval and returns ranked matches with scores.
func (h *QueryHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	matches, err := h.query.Retrieve(c.Request.Context(), req.Query, req.TopK, req.Filename)
	if err != nil {
		handleError(c, err)
		return
	}
	if matches == nil {
		matches = []vectorindex.Match{}
	}
	response.Success(c, queryResponse{Query: req.Query, Matches: matches})
}

// Retrieve returns chunk texts only, for callers that feed a prompt and
// do not care about scores.
func (h *QueryHandler) Retrieve(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	matches, err := h.query.Retrieve(c.Request.Context(), req.Query, req.TopK, req.Filename)
	if err != nil {
		handleError(c, err)
		return
	}
	chunks := make([]string, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, m.Text)
	}
	response.Success(c, gin.H{"query": req.Query, "chunks": chunks})
}

// Healthz reports liveness plus index stats.
func (h *QueryHandler) Healthz(c *gin.Context) {
	stats, err := h.query.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "ok", "index": stats})
}
