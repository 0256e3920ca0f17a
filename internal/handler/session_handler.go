package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/pkg/response"
	"github.com/docchat/docchat/internal/service"
)

type SessionHandler struct {
	chat *service.ChatService
}

func NewSessionHandler(chat *service.ChatService) *SessionHandler {
	return &SessionHandler{chat: chat}
}

type createSessionRequest struct {
	Name  string  `json:"name"`
	Mode  string  `json:"mode"`
	PDFID *string `json:"pdf_id"`
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	session, err := h.chat.CreateSession(c.Request.Context(), req.Name, req.Mode, req.PDFID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, session)
}

func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.chat.ListSessions(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	response.Success(c, gin.H{"sessions": sessions})
}

func (h *SessionHandler) Messages(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	messages, err := h.chat.SessionMessages(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	response.Success(c, gin.H{"messages": messages})
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.chat.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
