package handlers

import (
	"encoding/json"
	"net/http"
	"time"
	"unicode/utf8"

	"marketplace-service/models"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

const maxMessageLength = 140

// MessageHandler handles message sends; listing happens in the conversation
// detail view.
type MessageHandler struct {
	db *sqlx.DB
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(db *sqlx.DB) *MessageHandler {
	return &MessageHandler{db: db}
}

// SendMessage handles POST /message - append a message to a conversation.
// Text must be 1..140 characters. Sender participation in the conversation is
// not verified; the gate only guarantees the caller is someone.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(r, "error", "Invalid request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid JSON"))
		return
	}

	// Length counts characters, not bytes; multibyte text stays within limit
	length := utf8.RuneCountInString(req.Message)
	if length == 0 || length > maxMessageLength {
		logRequest(r, "error", "Message length out of range", zap.Int("length", length))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Message must be between 1 and 140 characters"))
		return
	}
	if req.Name == 0 || req.Conversation == 0 {
		logRequest(r, "error", "Missing required message fields")
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Name and conversation are required"))
		return
	}

	logRequest(r, "info", "Sending message",
		zap.Int("sender_id", req.Name), zap.Int("conversation_id", req.Conversation))

	now := time.Now()
	result, err := h.db.Exec(
		"INSERT INTO messages (message, sender_id, conversation_id, created_at) VALUES (?, ?, ?, ?)",
		req.Message, req.Name, req.Conversation, now)
	if err != nil {
		logRequest(r, "error", "Failed to save message", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Could not save message"))
		return
	}

	id, _ := result.LastInsertId()

	logRequest(r, "info", "Message sent", zap.Int("message_id", int(id)))

	writeJSON(w, http.StatusOK, models.Message{
		ID:             int(id),
		Message:        req.Message,
		SenderID:       req.Name,
		ConversationID: req.Conversation,
		CreatedAt:      now,
	})
}
