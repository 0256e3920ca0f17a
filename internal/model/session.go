package model

import "time"

const (
	SessionModeChat = "chat"
	SessionModePDF  = "pdf"
)

const (
	MessageTypeUser      = "user"
	MessageTypeAssistant = "assistant"
)

type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Mode      string    `json:"mode"`
	PDFID     *string   `json:"pdf_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is an append-only record; Metadata optionally holds the
// retrieved chunks that backed an assistant reply.
type ChatMessage struct {
	ID          int64                  `json:"id"`
	SessionID   string                 `json:"session_id"`
	MessageType string                 `json:"message_type"`
	Content     string                 `json:"content"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
