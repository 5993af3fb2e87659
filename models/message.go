package models

import "time"

// Message belongs to exactly one conversation and is immutable once created.
// The wire format keeps the original field names: "name" carries the sender's
// user id on the way in and the sender's display name on the way out.
type Message struct {
	ID             int       `json:"id" db:"id"`
	Message        string    `json:"message" db:"message"`
	SenderID       int       `json:"name" db:"sender_id"`
	ConversationID int       `json:"conversation" db:"conversation_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// SendMessageRequest represents the POST /message body
type SendMessageRequest struct {
	Message      string `json:"message"`
	Name         int    `json:"name"`         // Sender user id
	Conversation int    `json:"conversation"` // Conversation id
}

// EnrichedMessage resolves the sender reference to the current display name
// at read time; it is never a snapshot from send time.
type EnrichedMessage struct {
	ID        int       `json:"id"`
	Message   string    `json:"message"`
	Name      string    `json:"name"` // Sender display name
	CreatedAt time.Time `json:"createdAt"`
}
