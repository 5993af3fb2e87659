package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"marketplace-service/models"
	"marketplace-service/tokens"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles registration, login and seller lookups
type UserHandler struct {
	db    *sqlx.DB
	cache cache.Cache
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *sqlx.DB, cache cache.Cache) *UserHandler {
	return &UserHandler{
		db:    db,
		cache: cache,
	}
}

// Register handles POST /users/create - create a new account
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(r, "error", "Invalid request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid JSON"))
		return
	}

	if len(req.Name) < 2 {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Name must be at least 2 characters"))
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Email is required"))
		return
	}
	if len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Password must be at least 6 characters"))
		return
	}

	logRequest(r, "info", "Registering user", zap.String("name", req.Name), zap.String("email", req.Email))

	// Uniqueness check ahead of the insert; the UNIQUE constraints back it up
	var existing int
	err := h.db.QueryRow("SELECT id FROM users WHERE name = ? OR email = ?", req.Name, req.Email).Scan(&existing)
	if err == nil {
		logRequest(r, "info", "Duplicate name or email", zap.String("name", req.Name))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Name and email must be unique"))
		return
	}
	if err != sql.ErrNoRows {
		logRequest(r, "error", "Failed to check uniqueness", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	// Hash password with bcrypt (cost 12)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		logRequest(r, "error", "Password hashing failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to process password"))
		return
	}

	token, err := tokens.GenerateAccessToken()
	if err != nil {
		logRequest(r, "error", "Token generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to generate access token"))
		return
	}

	result, err := h.db.Exec("INSERT INTO users (name, email, password, access_token, created_at) VALUES (?, ?, ?, ?, ?)",
		req.Name, req.Email, string(hashedPassword), token, time.Now())
	if err != nil {
		logRequest(r, "error", "Failed to create user", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Could not create user"))
		return
	}

	id, _ := result.LastInsertId()
	userID := int(id)

	logRequest(r, "info", "User registered successfully", zap.Int("user_id", userID))

	writeJSON(w, http.StatusCreated, models.AuthResponse{
		UserID:      userID,
		AccessToken: token,
		UserName:    req.Name,
	})
}

// Login handles POST /sessions - verify credentials and return the stored token
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(r, "error", "Invalid login body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid JSON"))
		return
	}

	var user models.User
	err := h.db.QueryRow("SELECT id, name, email, password, access_token FROM users WHERE email = ?", req.Email).
		Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.AccessToken)
	if err == sql.ErrNoRows {
		logRequest(r, "info", "Login for unknown email", zap.String("email", req.Email))
		writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Invalid credentials"))
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to query user", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logRequest(r, "info", "Invalid password", zap.String("email", req.Email))
		writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Invalid credentials"))
		return
	}

	logRequest(r, "info", "Login successful", zap.Int("user_id", user.ID))

	writeJSON(w, http.StatusOK, models.AuthResponse{
		UserID:      user.ID,
		AccessToken: user.AccessToken,
		UserName:    user.Name,
	})
}

// Seller handles GET /seller/{id} - public display-name lookup.
// Cached: user names are immutable (no update endpoint), so entries never go
// stale.
func (h *UserHandler) Seller(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(r, "error", "Invalid seller ID", zap.String("id", idStr))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid seller ID"))
		return
	}

	cacheKey := "seller:" + idStr
	if cached, err := h.cache.Get(cacheKey); err == nil {
		if data, ok := cached.([]byte); ok {
			logRequest(r, "debug", "Serving seller from cache", zap.Int("seller_id", id))
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
			return
		}
	}

	var name string
	err = h.db.QueryRow("SELECT name FROM users WHERE id = ?", id).Scan(&name)
	if err == sql.ErrNoRows {
		logRequest(r, "info", "Seller not found", zap.Int("seller_id", id))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Seller not found"))
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to query seller", zap.Error(err), zap.Int("seller_id", id))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	response, _ := json.Marshal(models.SellerResponse{SellerName: name})
	h.cache.Set(cacheKey, response, 10*time.Minute)

	logRequest(r, "info", "Seller retrieved", zap.Int("seller_id", id))

	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}
