package models

import "time"

// Ad represents a marketplace listing. SellerID references a user that must
// exist at write time; integrity is not enforced afterwards, so reads have to
// tolerate orphaned references.
type Ad struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Info      string    `json:"info" db:"info"`
	Price     float64   `json:"price" db:"price"`
	Category  string    `json:"category" db:"category"`
	Location  string    `json:"location" db:"location"`
	Delivery  string    `json:"delivery" db:"delivery"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	ImageID   string    `json:"imageId" db:"image_id"`
	SellerID  int       `json:"seller" db:"seller_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// EnrichedAd is an Ad with the seller reference resolved to a display name at
// read time. The name is a join, never a denormalized copy.
type EnrichedAd struct {
	Ad
	SellerName string `json:"sellerName"`
}
