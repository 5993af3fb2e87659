package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"marketplace-service/models"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// conversationStatusOpen is the only status the system produces. The field is
// write-once; no operation transitions it.
const conversationStatusOpen = 1

// ConversationHandler handles buyer/seller threads
type ConversationHandler struct {
	db *sqlx.DB
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(db *sqlx.DB) *ConversationHandler {
	return &ConversationHandler{db: db}
}

// CreateConversation handles POST /conversation - a buyer initiating contact
// on an ad. Neither sellerId-matches-ad nor buyer != seller is validated; the
// gate only guarantees the caller is someone.
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(r, "error", "Invalid request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid JSON"))
		return
	}

	if req.Name == "" || req.AdID == 0 || req.SellerID == 0 || req.BuyerID == 0 {
		logRequest(r, "error", "Missing required conversation fields")
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Name, adId, sellerId and buyerId are required"))
		return
	}

	logRequest(r, "info", "Creating conversation",
		zap.Int("ad_id", req.AdID), zap.Int("seller_id", req.SellerID), zap.Int("buyer_id", req.BuyerID))

	now := time.Now()
	result, err := h.db.Exec(
		"INSERT INTO conversations (name, ad_id, seller_id, buyer_id, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		req.Name, req.AdID, req.SellerID, req.BuyerID, conversationStatusOpen, now)
	if err != nil {
		logRequest(r, "error", "Failed to create conversation", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Could not save conversation"))
		return
	}

	id, _ := result.LastInsertId()

	logRequest(r, "info", "Conversation created", zap.Int("conversation_id", int(id)))

	writeJSON(w, http.StatusCreated, models.Conversation{
		ID:        int(id),
		Name:      req.Name,
		AdID:      req.AdID,
		SellerID:  req.SellerID,
		BuyerID:   req.BuyerID,
		Status:    conversationStatusOpen,
		CreatedAt: now,
	})
}

// ListConversations handles GET /conversations?userId= - a participant's
// threads grouped by role. The two lists are disjoint: a degenerate thread
// where the user is both seller and buyer appears under sellerConversations
// only, because the buyer query excludes rows whose seller also matches.
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userIDStr := r.URL.Query().Get("userId")
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		logRequest(r, "error", "Invalid user ID", zap.String("userId", userIDStr))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid user ID"))
		return
	}

	var exists int
	err = h.db.QueryRow("SELECT id FROM users WHERE id = ?", userID).Scan(&exists)
	if err == sql.ErrNoRows {
		logRequest(r, "info", "User not found", zap.Int("user_id", userID))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("User not found"))
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to check user", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(r, "info", "Listing conversations", zap.Int("user_id", userID))

	// Counterpart is the buyer on the seller side and vice versa. LEFT JOINs
	// tolerate orphaned ad/user references; conversations themselves are
	// never deleted.
	asSeller, err := h.listByRole(
		`SELECT c.id, c.name, c.ad_id, c.seller_id, c.buyer_id, c.status, c.created_at,
			u.name, a.title, a.image_url
		FROM conversations c
		LEFT JOIN users u ON u.id = c.buyer_id
		LEFT JOIN ads a ON a.id = c.ad_id
		WHERE c.seller_id = ?
		ORDER BY c.created_at DESC, c.id DESC`, userID)
	if err != nil {
		logRequest(r, "error", "Failed to query seller conversations", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	asBuyer, err := h.listByRole(
		`SELECT c.id, c.name, c.ad_id, c.seller_id, c.buyer_id, c.status, c.created_at,
			u.name, a.title, a.image_url
		FROM conversations c
		LEFT JOIN users u ON u.id = c.seller_id
		LEFT JOIN ads a ON a.id = c.ad_id
		WHERE c.buyer_id = ? AND c.seller_id <> ?
		ORDER BY c.created_at DESC, c.id DESC`, userID, userID)
	if err != nil {
		logRequest(r, "error", "Failed to query buyer conversations", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(r, "info", "Conversations retrieved", zap.Int("user_id", userID),
		zap.Int("as_seller", len(asSeller)), zap.Int("as_buyer", len(asBuyer)))

	writeJSON(w, http.StatusOK, models.ConversationListResponse{
		SellerConversations: asSeller,
		BuyerConversations:  asBuyer,
	})
}

func (h *ConversationHandler) listByRole(query string, args ...interface{}) ([]models.ConversationSummary, error) {
	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.ConversationSummary{}
	for rows.Next() {
		var c models.ConversationSummary
		var counterpart, adTitle, adImageURL sql.NullString
		err := rows.Scan(&c.ID, &c.Name, &c.AdID, &c.SellerID, &c.BuyerID, &c.Status, &c.CreatedAt,
			&counterpart, &adTitle, &adImageURL)
		if err != nil {
			return nil, err
		}
		c.CounterpartName = counterpart.String
		c.AdTitle = adTitle.String
		c.AdImageURL = adImageURL.String
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetConversationDetail handles GET /conversation/{id} - the ad-derived header
// plus the full message history. Messages are ordered by creation time with
// sender names resolved live at read time.
func (h *ConversationHandler) GetConversationDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(r, "error", "Invalid conversation ID", zap.String("id", idStr))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid conversation ID"))
		return
	}

	logRequest(r, "info", "Getting conversation detail", zap.Int("conversation_id", id))

	var conv models.Conversation
	err = h.db.QueryRow(
		"SELECT id, name, ad_id, seller_id, buyer_id, status, created_at FROM conversations WHERE id = ?", id).
		Scan(&conv.ID, &conv.Name, &conv.AdID, &conv.SellerID, &conv.BuyerID, &conv.Status, &conv.CreatedAt)
	if err == sql.ErrNoRows {
		logRequest(r, "info", "Conversation not found", zap.Int("conversation_id", id))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Conversation not found"))
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to query conversation", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	info := models.ConversationInfo{Name: conv.Name}
	err = h.db.QueryRow("SELECT title, image_url, price, location, delivery FROM ads WHERE id = ?", conv.AdID).
		Scan(&info.Title, &info.ImageURL, &info.Price, &info.Location, &info.Delivery)
	if err == sql.ErrNoRows {
		// The single-lookup path fails the whole request on a missing ad
		logRequest(r, "info", "Ad not found for conversation", zap.Int("ad_id", conv.AdID))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Ad not found"))
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to query ad", zap.Error(err), zap.Int("ad_id", conv.AdID))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	rows, err := h.db.Query(`SELECT m.id, m.message, u.name, m.created_at
		FROM messages m LEFT JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = ?
		ORDER BY m.created_at ASC, m.id ASC`, id)
	if err != nil {
		logRequest(r, "error", "Failed to query messages", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}
	defer rows.Close()

	messages := []models.EnrichedMessage{}
	for rows.Next() {
		var m models.EnrichedMessage
		var senderName sql.NullString
		if err := rows.Scan(&m.ID, &m.Message, &senderName, &m.CreatedAt); err != nil {
			logRequest(r, "error", "Failed to scan message", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
			return
		}
		m.Name = senderName.String
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		logRequest(r, "error", "Failed to read messages", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(r, "info", "Conversation detail retrieved",
		zap.Int("conversation_id", id), zap.Int("messages", len(messages)))

	writeJSON(w, http.StatusOK, models.ConversationDetailResponse{
		Info:     info,
		Messages: messages,
	})
}
