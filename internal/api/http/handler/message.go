package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/campusmarket-server/internal/api/http/httperr"
	"github.com/dtroode/campusmarket-server/internal/api/http/middleware"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// MessageService handles direct messages of an authenticated caller.
type MessageService interface {
	Send(ctx context.Context, caller model.SessionClaims, recipient, text string) (model.Message, error)
	Conversation(ctx context.Context, caller model.SessionClaims, other string) ([]model.Message, error)
	Threads(ctx context.Context, caller model.SessionClaims) ([]model.Thread, error)
}

// Message handles the /messages endpoints.
type Message struct {
	messageService MessageService
	logger         *logger.Logger
}

// NewMessage creates a new Message handler.
func NewMessage(messageService MessageService, logger *logger.Logger) *Message {
	return &Message{messageService: messageService, logger: logger}
}

type sendMessageRequest struct {
	Text string `form:"text" json:"text"`
}

// Participants are identified by email under the senderId/recipientId keys
// the web client reads.
type messageResponse struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Text        string    `json:"text"`
	SentAt      time.Time `json:"sentAt"`
}

type threadResponse struct {
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	LastMessage string    `json:"lastMessage"`
	LastAt      time.Time `json:"lastAt"`
}

func toMessageResponse(m model.Message) messageResponse {
	return messageResponse{
		ID:          m.ID.String(),
		SenderID:    m.SenderEmail,
		RecipientID: m.RecipientEmail,
		Text:        m.Text,
		SentAt:      m.SentAt,
	}
}

// Send posts a message to the :recipient path parameter.
func (h *Message) Send(c *gin.Context) {
	caller, _ := middleware.SessionFromContext(c)

	var req sendMessageRequest
	if !bind(c, &req) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), caller, c.Param("recipient"), req.Text)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

// Conversation returns the messages exchanged with the :other path parameter.
func (h *Message) Conversation(c *gin.Context) {
	caller, _ := middleware.SessionFromContext(c)

	messages, err := h.messageService.Conversation(c.Request.Context(), caller, c.Param("other"))
	if err != nil {
		httperr.Write(c, err)
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Message) Threads(c *gin.Context) {
	caller, _ := middleware.SessionFromContext(c)

	threads, err := h.messageService.Threads(c.Request.Context(), caller)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	out := make([]threadResponse, 0, len(threads))
	for _, t := range threads {
		out = append(out, threadResponse{
			UserID:      t.OtherEmail,
			Name:        t.Name,
			LastMessage: t.LastMessage,
			LastAt:      t.LastAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
