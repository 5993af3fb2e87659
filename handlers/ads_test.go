package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"marketplace-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAd(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Alva", "alva@example.com", "password1")

	ad := env.createAd(t, user.AccessToken, defaultAdForm(user.UserID))
	assert.NotZero(t, ad.ID)
	assert.Equal(t, "Blue racing bike", ad.Title)
	assert.Equal(t, float64(1500), ad.Price)
	assert.Equal(t, user.UserID, ad.SellerID)
	assert.NotEmpty(t, ad.ImageURL)
	assert.NotEmpty(t, ad.ImageID)
}

func TestCreateAdValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Alva", "alva@example.com", "password1")

	t.Run("requires auth", func(t *testing.T) {
		rec := env.postAd(t, "", defaultAdForm(user.UserID))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		form := defaultAdForm(user.UserID)
		form.title = ""
		rec := env.postAd(t, user.AccessToken, form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing image", func(t *testing.T) {
		form := defaultAdForm(user.UserID)
		form.image = false
		rec := env.postAd(t, user.AccessToken, form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-numeric price", func(t *testing.T) {
		form := defaultAdForm(user.UserID)
		form.price = "cheap"
		rec := env.postAd(t, user.AccessToken, form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown seller", func(t *testing.T) {
		form := defaultAdForm(99999)
		rec := env.postAd(t, user.AccessToken, form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDuplicateAdsNeverCollapse(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Alva", "alva@example.com", "password1")

	for i := 1; i <= 3; i++ {
		env.createAd(t, user.AccessToken, defaultAdForm(user.UserID))

		var count int
		require.NoError(t, env.db.QueryRow("SELECT COUNT(*) FROM ads").Scan(&count))
		assert.Equal(t, i, count, "every identical post must add exactly one record")
	}
}

func TestListAdsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Alva", "alva@example.com", "password1")

	var ids []int
	for i := 0; i < 3; i++ {
		form := defaultAdForm(user.UserID)
		form.title = fmt.Sprintf("Ad %d", i)
		ad := env.createAd(t, user.AccessToken, form)
		ids = append(ids, ad.ID)
	}

	rec := env.doJSON(t, "GET", "/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ads := decode[[]models.EnrichedAd](t, rec)
	require.Len(t, ads, 3)

	assert.Equal(t, []int{ids[2], ids[1], ids[0]}, []int{ads[0].ID, ads[1].ID, ads[2].ID})
	for i := 1; i < len(ads); i++ {
		assert.False(t, ads[i].CreatedAt.After(ads[i-1].CreatedAt),
			"createdAt must be non-increasing")
	}
	for _, ad := range ads {
		assert.Equal(t, "Alva", ad.SellerName)
	}
}

func TestGetAdByID(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Alva", "alva@example.com", "password1")
	ad := env.createAd(t, user.AccessToken, defaultAdForm(user.UserID))

	rec := env.doJSON(t, "GET", fmt.Sprintf("/posts?id=%d", ad.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.EnrichedAd](t, rec)
	assert.Equal(t, ad.ID, got.ID)
	assert.Equal(t, "Alva", got.SellerName)

	rec = env.doJSON(t, "GET", "/posts?id=99999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAdFailsWhenSellerMissing(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Alva", "alva@example.com", "password1")
	ad := env.createAd(t, user.AccessToken, defaultAdForm(user.UserID))

	// Orphan the seller reference; integrity is read-time only
	_, err := env.db.Exec("DELETE FROM users WHERE id = ?", user.UserID)
	require.NoError(t, err)

	rec := env.doJSON(t, "GET", fmt.Sprintf("/posts?id=%d", ad.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The unfiltered list fails as a whole rather than degrading
	rec = env.doJSON(t, "GET", "/posts", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAdsBySeller(t *testing.T) {
	env := newTestEnv(t)
	alva := env.registerUser(t, "Alva", "alva@example.com", "password1")
	bertil := env.registerUser(t, "Bertil", "bertil@example.com", "password2")

	env.createAd(t, alva.AccessToken, defaultAdForm(alva.UserID))
	env.createAd(t, alva.AccessToken, defaultAdForm(alva.UserID))
	env.createAd(t, bertil.AccessToken, defaultAdForm(bertil.UserID))

	rec := env.doJSON(t, "GET", fmt.Sprintf("/posts?userId=%d", alva.UserID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ads := decode[[]models.EnrichedAd](t, rec)
	require.Len(t, ads, 2)
	for _, ad := range ads {
		assert.Equal(t, alva.UserID, ad.SellerID)
		assert.Equal(t, "Alva", ad.SellerName)
	}

	rec = env.doJSON(t, "GET", "/posts?userId=99999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAd(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Alva", "alva@example.com", "password1")
	ad := env.createAd(t, user.AccessToken, defaultAdForm(user.UserID))

	rec := env.doJSON(t, "DELETE", fmt.Sprintf("/posts/%d", ad.ID), user.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Deleting a missing id is 404, consistently
	rec = env.doJSON(t, "DELETE", fmt.Sprintf("/posts/%d", ad.ID), user.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.doJSON(t, "DELETE", "/posts/99999", user.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdsListCacheInvalidatedOnWrite(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Alva", "alva@example.com", "password1")
	env.createAd(t, user.AccessToken, defaultAdForm(user.UserID))

	// Prime the cache
	rec := env.doJSON(t, "GET", "/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]models.EnrichedAd](t, rec), 1)

	// A new post must show up despite the cached listing
	env.createAd(t, user.AccessToken, defaultAdForm(user.UserID))
	rec = env.doJSON(t, "GET", "/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.EnrichedAd](t, rec), 2)
}
