package handler

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/docchat/docchat/internal/middleware"
)

type RouterDeps struct {
	Upload   *UploadHandler
	Query    *QueryHandler
	Chat     *ChatHandler
	Sessions *SessionHandler

	CORSAllowlist []string
	UploadWindow  time.Duration
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(deps.CORSAllowlist))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	api := router.Group("/api/v1")
	api.GET("/healthz", deps.Query.Healthz)

	upload := api.Group("")
	if deps.UploadWindow > 0 {
		upload.Use(middleware.RateLimit(deps.UploadWindow))
	}
	upload.POST("/upload-pdf", deps.Upload.UploadPDF)

	api.POST("/query", deps.Query.Query)
	api.POST("/retrieve", deps.Query.Retrieve)

	api.POST("/save-message", deps.Chat.SaveMessage)
	api.GET("/chat-history", deps.Chat.History)
	api.DELETE("/chat-history/:session_id", deps.Chat.DeleteHistory)

	api.POST("/sessions", deps.Sessions.Create)
	api.GET("/sessions", deps.Sessions.List)
	api.GET("/sessions/:id/messages", deps.Sessions.Messages)
	api.DELETE("/sessions/:id", deps.Sessions.Delete)

	return router
}
