package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/pkg/response"
	"github.com/docchat/docchat/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type saveMessageRequest struct {
	SessionID       string   `json:"session_id"`
	Question        string   `json:"question"`
	Answer          string   `json:"answer"`
	RetrievedChunks []string `json:"retrieved_chunks"`
}

// SaveMessage appends a question/answer exchange to a session.
func (h *ChatHandler) SaveMessage(c *gin.Context) {
	var req saveMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	err := h.chat.SaveConversation(c.Request.Context(), req.SessionID, req.Question, req.Answer, req.RetrievedChunks)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"session_id": req.SessionID})
}

// History lists messages, optionally scoped to one session.
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Query("session_id")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	messages, err := h.chat.History(c.Request.Context(), sessionID, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	response.Success(c, gin.H{"messages": messages})
}

// DeleteHistory clears a session's messages.
func (h *ChatHandler) DeleteHistory(c *gin.Context) {
	deleted, err := h.chat.DeleteHistory(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}
