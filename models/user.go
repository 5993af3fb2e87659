package models

import "time"

// User represents a marketplace account.
// Password is stored hashed (bcrypt); the access token is the sole credential
// artifact, issued once at registration and never rotated. Neither is ever
// serialized into entity JSON.
type User struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Password    string    `json:"-" db:"password"`
	AccessToken string    `json:"-" db:"access_token"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateUserRequest represents the POST /users/create body
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"` // Plaintext; hashed in the handler
}

// LoginRequest for POST /sessions
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both registration and login
type AuthResponse struct {
	UserID      int    `json:"userId"`
	AccessToken string `json:"accessToken"`
	UserName    string `json:"userName"`
}

// SellerResponse for the public GET /seller/{id} lookup
type SellerResponse struct {
	SellerName string `json:"sellerName"`
}
