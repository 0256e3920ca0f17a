package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/pkg/errs"
	"github.com/docchat/docchat/internal/repo"
)

// ChatService manages sessions and their append-only message history.
type ChatService struct {
	sessions *repo.SessionRepo
	messages *repo.MessageRepo
	now      func() time.Time
}

func NewChatService(sessions *repo.SessionRepo, messages *repo.MessageRepo) *ChatService {
	return &ChatService{
		sessions: sessions,
		messages: messages,
		now:      time.Now,
	}
}

// SaveConversation appends one question/answer exchange to a session.
// The chunks that grounded the answer travel as assistant metadata so
// the history can show provenance later.
func (s *ChatService) SaveConversation(ctx context.Context, sessionID, question, answer string, retrievedChunks []string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: session_id is required", errs.ErrInvalid)
	}
	if strings.TrimSpace(question) == "" && strings.TrimSpace(answer) == "" {
		return fmt.Errorf("%w: nothing to save", errs.ErrInvalid)
	}
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return err
	}
	now := s.now().UTC()
	if strings.TrimSpace(question) != "" {
		err := s.messages.Append(ctx, &model.ChatMessage{
			SessionID:   sessionID,
			MessageType: model.MessageTypeUser,
			Content:     question,
			Timestamp:   now,
		})
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(answer) != "" {
		var meta map[string]interface{}
		if len(retrievedChunks) > 0 {
			meta = map[string]interface{}{"retrieved_chunks": retrievedChunks}
		}
		err := s.messages.Append(ctx, &model.ChatMessage{
			SessionID:   sessionID,
			MessageType: model.MessageTypeAssistant,
			Content:     answer,
			Timestamp:   now,
			Metadata:    meta,
		})
		if err != nil {
			return err
		}
	}
	return s.sessions.Touch(ctx, sessionID, now)
}

// History lists messages, chronological within a session or newest-first
// across all sessions when sessionID is empty.
func (s *ChatService) History(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", errs.ErrInvalid)
	}
	return s.messages.List(ctx, sessionID, limit)
}

// DeleteHistory clears a session's messages and reports how many were
// removed. The session itself stays.
func (s *ChatService) DeleteHistory(ctx context.Context, sessionID string) (int64, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, fmt.Errorf("%w: session_id is required", errs.ErrInvalid)
	}
	return s.messages.DeleteBySession(ctx, sessionID)
}

func (s *ChatService) CreateSession(ctx context.Context, name, mode string, pdfID *string) (*model.Session, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: session name is required", errs.ErrInvalid)
	}
	switch mode {
	case model.SessionModeChat, model.SessionModePDF:
	case "":
		mode = model.SessionModeChat
	default:
		return nil, fmt.Errorf("%w: mode must be chat or pdf", errs.ErrInvalid)
	}
	now := s.now().UTC()
	session := &model.Session{
		ID:        uuid.NewString(),
		Name:      name,
		Mode:      mode,
		PDFID:     pdfID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return s.sessions.Get(ctx, id)
}

func (s *ChatService) ListSessions(ctx context.Context) ([]model.Session, error) {
	return s.sessions.List(ctx)
}

func (s *ChatService) SessionMessages(ctx context.Context, id string, limit int) ([]model.ChatMessage, error) {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.messages.List(ctx, id, limit)
}

// DeleteSession removes the session and its messages. Messages go first
// so a failure never strands history without its session.
func (s *ChatService) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return err
	}
	if _, err := s.messages.DeleteBySession(ctx, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}
