package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"marketplace-service/models"
	"marketplace-service/storage"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

const (
	adsListCacheKey = "ads:list"
	adsListCacheTTL = 5 * time.Minute
)

// AdHandler handles the ad catalog
type AdHandler struct {
	db     *sqlx.DB
	cache  cache.Cache
	images storage.ImageStore
}

// NewAdHandler creates a new ad handler
func NewAdHandler(db *sqlx.DB, cache cache.Cache, images storage.ImageStore) *AdHandler {
	return &AdHandler{
		db:     db,
		cache:  cache,
		images: images,
	}
}

// ListAds handles GET /posts - the catalog query.
// Three shapes: ?id= returns a single enriched ad, ?userId= returns one
// seller's ads, no filter returns the full catalog newest first. Every result
// carries the seller's display name resolved at read time; an unresolvable
// seller fails the whole response rather than degrading partially.
func (h *AdHandler) ListAds(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if idStr := query.Get("id"); idStr != "" {
		h.getAd(w, r, idStr)
		return
	}
	if userIDStr := query.Get("userId"); userIDStr != "" {
		h.listSellerAds(w, r, userIDStr)
		return
	}

	logRequest(r, "info", "Listing all ads")

	// Try cache first
	if cached, err := h.cache.Get(adsListCacheKey); err == nil {
		if data, ok := cached.([]byte); ok {
			logRequest(r, "debug", "Serving ads from cache")
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
			return
		}
	}

	rows, err := h.db.Query(`SELECT a.id, a.title, a.info, a.price, a.category, a.location, a.delivery,
			a.image_url, a.image_id, a.seller_id, a.created_at, u.name
		FROM ads a LEFT JOIN users u ON u.id = a.seller_id
		ORDER BY a.created_at DESC, a.id DESC`)
	if err != nil {
		logRequest(r, "error", "Failed to query ads", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}
	defer rows.Close()

	ads := []models.EnrichedAd{}
	for rows.Next() {
		var ad models.EnrichedAd
		var sellerName sql.NullString
		err := rows.Scan(&ad.ID, &ad.Title, &ad.Info, &ad.Price, &ad.Category, &ad.Location,
			&ad.Delivery, &ad.ImageURL, &ad.ImageID, &ad.SellerID, &ad.CreatedAt, &sellerName)
		if err != nil {
			logRequest(r, "error", "Failed to scan ad", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
			return
		}
		if !sellerName.Valid {
			// One failed seller lookup fails the full response
			logRequest(r, "error", "Ad references missing seller", zap.Int("ad_id", ad.ID), zap.Int("seller_id", ad.SellerID))
			writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Seller not found"))
			return
		}
		ad.SellerName = sellerName.String
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		logRequest(r, "error", "Failed to read ads", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	response, _ := json.Marshal(ads)
	h.cache.Set(adsListCacheKey, response, adsListCacheTTL)

	logRequest(r, "info", "Ads retrieved successfully", zap.Int("count", len(ads)))

	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}

// getAd serves the ?id= single-ad path
func (h *AdHandler) getAd(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(r, "error", "Invalid ad ID", zap.String("id", idStr))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid ad ID"))
		return
	}

	logRequest(r, "info", "Getting ad", zap.Int("ad_id", id))

	var ad models.EnrichedAd
	err = h.db.QueryRow(`SELECT id, title, info, price, category, location, delivery,
			image_url, image_id, seller_id, created_at
		FROM ads WHERE id = ?`, id).
		Scan(&ad.ID, &ad.Title, &ad.Info, &ad.Price, &ad.Category, &ad.Location,
			&ad.Delivery, &ad.ImageURL, &ad.ImageID, &ad.SellerID, &ad.CreatedAt)
	if err == sql.ErrNoRows {
		logRequest(r, "info", "Ad not found", zap.Int("ad_id", id))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Ad not found"))
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to query ad", zap.Error(err), zap.Int("ad_id", id))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	err = h.db.QueryRow("SELECT name FROM users WHERE id = ?", ad.SellerID).Scan(&ad.SellerName)
	if err == sql.ErrNoRows {
		// Orphaned seller reference fails the single-ad path outright
		logRequest(r, "info", "Seller not found for ad", zap.Int("ad_id", id), zap.Int("seller_id", ad.SellerID))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Seller not found"))
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to query seller", zap.Error(err), zap.Int("seller_id", ad.SellerID))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	writeJSON(w, http.StatusOK, ad)
}

// listSellerAds serves the ?userId= path
func (h *AdHandler) listSellerAds(w http.ResponseWriter, r *http.Request, userIDStr string) {
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		logRequest(r, "error", "Invalid user ID", zap.String("userId", userIDStr))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid user ID"))
		return
	}

	logRequest(r, "info", "Listing seller ads", zap.Int("seller_id", userID))

	var sellerName string
	err = h.db.QueryRow("SELECT name FROM users WHERE id = ?", userID).Scan(&sellerName)
	if err == sql.ErrNoRows {
		logRequest(r, "info", "Seller not found", zap.Int("seller_id", userID))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Seller not found"))
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to query seller", zap.Error(err), zap.Int("seller_id", userID))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	rows, err := h.db.Query(`SELECT id, title, info, price, category, location, delivery,
			image_url, image_id, seller_id, created_at
		FROM ads WHERE seller_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		logRequest(r, "error", "Failed to query seller ads", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}
	defer rows.Close()

	ads := []models.EnrichedAd{}
	for rows.Next() {
		var ad models.EnrichedAd
		err := rows.Scan(&ad.ID, &ad.Title, &ad.Info, &ad.Price, &ad.Category, &ad.Location,
			&ad.Delivery, &ad.ImageURL, &ad.ImageID, &ad.SellerID, &ad.CreatedAt)
		if err != nil {
			logRequest(r, "error", "Failed to scan ad", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
			return
		}
		ad.SellerName = sellerName
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		logRequest(r, "error", "Failed to read seller ads", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(r, "info", "Seller ads retrieved", zap.Int("seller_id", userID), zap.Int("count", len(ads)))

	writeJSON(w, http.StatusOK, ads)
}

// CreateAd handles POST /posts - post a new listing (multipart form).
// The access gate has already resolved an identity; the gate does not require
// the caller to equal the seller field.
func (h *AdHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		logRequest(r, "error", "Invalid multipart form", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid multipart form"))
		return
	}

	title := r.FormValue("title")
	info := r.FormValue("info")
	priceStr := r.FormValue("price")
	category := r.FormValue("category")
	location := r.FormValue("location")
	delivery := r.FormValue("delivery")
	sellerStr := r.FormValue("seller")

	if title == "" || info == "" || priceStr == "" || delivery == "" || sellerStr == "" {
		logRequest(r, "error", "Missing required ad fields", zap.String("title", title))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Title, info, price, delivery and seller are required"))
		return
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Price must be a number"))
		return
	}
	sellerID, err := strconv.Atoi(sellerStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Seller must be a user ID"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		logRequest(r, "error", "Missing image file", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Image file is required"))
		return
	}
	defer file.Close()

	// Seller must exist at write time; integrity is not enforced afterwards
	var exists int
	err = h.db.QueryRow("SELECT id FROM users WHERE id = ?", sellerID).Scan(&exists)
	if err == sql.ErrNoRows {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Seller does not exist"))
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to check seller", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	saved, err := h.images.Save(header.Filename, file)
	if err != nil {
		logRequest(r, "error", "Failed to store image", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to store image"))
		return
	}

	logRequest(r, "info", "Creating ad", zap.String("title", title), zap.Int("seller_id", sellerID))

	now := time.Now()
	result, err := h.db.Exec(`INSERT INTO ads (title, info, price, category, location, delivery,
			image_url, image_id, seller_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		title, info, price, category, location, delivery, saved.URL, saved.ID, sellerID, now)
	if err != nil {
		logRequest(r, "error", "Failed to create ad", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Could not save ad"))
		return
	}

	id, _ := result.LastInsertId()

	// Clear ads list cache
	h.cache.Delete(adsListCacheKey)

	logRequest(r, "info", "Ad created successfully", zap.Int("ad_id", int(id)))

	writeJSON(w, http.StatusCreated, models.Ad{
		ID:        int(id),
		Title:     title,
		Info:      info,
		Price:     price,
		Category:  category,
		Location:  location,
		Delivery:  delivery,
		ImageURL:  saved.URL,
		ImageID:   saved.ID,
		SellerID:  sellerID,
		CreatedAt: now,
	})
}

// DeleteAd handles DELETE /posts/{id}.
// Deleting an id that does not exist is a 404, consistently.
func (h *AdHandler) DeleteAd(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(r, "error", "Invalid ad ID", zap.String("id", idStr))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid ad ID"))
		return
	}

	logRequest(r, "info", "Deleting ad", zap.Int("ad_id", id))

	result, err := h.db.Exec("DELETE FROM ads WHERE id = ?", id)
	if err != nil {
		logRequest(r, "error", "Failed to delete ad", zap.Error(err), zap.Int("ad_id", id))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to delete ad"))
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		logRequest(r, "info", "Ad not found for deletion", zap.Int("ad_id", id))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Ad not found"))
		return
	}

	h.cache.Delete(adsListCacheKey)

	logRequest(r, "info", "Ad deleted successfully", zap.Int("ad_id", id))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Ad deleted successfully"})
}
