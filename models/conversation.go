package models

import "time"

// Conversation is a persistent thread between exactly one buyer and one
// seller about one ad. Status is write-once: 1 means open, nothing in the
// system transitions it, and no endpoint filters on it.
type Conversation struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	AdID      int       `json:"adId" db:"ad_id"`
	SellerID  int       `json:"sellerId" db:"seller_id"`
	BuyerID   int       `json:"buyerId" db:"buyer_id"`
	Status    int       `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CreateConversationRequest represents the POST /conversation body
type CreateConversationRequest struct {
	Name     string `json:"name"`
	AdID     int    `json:"adId"`
	SellerID int    `json:"sellerId"`
	BuyerID  int    `json:"buyerId"`
}

// ConversationSummary is a list entry enriched with the counterpart's display
// name and the ad's title/image. Enrichment tolerates orphans: a deleted ad
// or user leaves the corresponding fields empty.
type ConversationSummary struct {
	Conversation
	CounterpartName string `json:"counterpartName"`
	AdTitle         string `json:"adTitle"`
	AdImageURL      string `json:"adImageUrl"`
}

// ConversationListResponse groups a participant's threads by role. The two
// lists are disjoint; when seller and buyer are the same user the thread is
// reported under sellerConversations only.
type ConversationListResponse struct {
	SellerConversations []ConversationSummary `json:"sellerConversations"`
	BuyerConversations  []ConversationSummary `json:"buyerConversations"`
}

// ConversationInfo is the ad-derived header of the detail view
type ConversationInfo struct {
	Name     string  `json:"name"`
	Title    string  `json:"title"`
	ImageURL string  `json:"imageUrl"`
	Price    float64 `json:"price"`
	Location string  `json:"location"`
	Delivery string  `json:"delivery"`
}

// ConversationDetailResponse for GET /conversation/{id}
type ConversationDetailResponse struct {
	Info     ConversationInfo  `json:"info"`
	Messages []EnrichedMessage `json:"messages"`
}
