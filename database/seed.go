package database

import (
	"fmt"
	"time"

	"marketplace-service/tokens"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	name     string
	email    string
	password string
}

type seedAd struct {
	title    string
	info     string
	price    float64
	category string
	location string
	delivery string
	seller   int // index into the seeded users
}

var seedUsers = []seedUser{
	{"Alva", "alva@example.com", "password1"},
	{"Bertil", "bertil@example.com", "password2"},
	{"Cecilia", "cecilia@example.com", "password3"},
}

var seedAds = []seedAd{
	{"Blue racing bike", "Well kept, 21 gears, new tires last spring.", 1500, "sport", "Stockholm", "pickup", 0},
	{"Kitchen table, oak", "Seats six, a few scratches on one leg.", 800, "furniture", "Uppsala", "pickup", 1},
	{"Acoustic guitar", "Yamaha F310, barely used, comes with a soft case.", 950, "music", "Stockholm", "shipping", 1},
	{"Winter tires on rims", "205/55 R16, two seasons left.", 2000, "car", "Malmö", "pickup", 2},
}

// Seed wipes every collection and reinserts the sample data set. Destructive;
// invoked only through the seed command.
func Seed(dbConn *sqlx.DB) error {
	logger.Info("Reseeding database")

	for _, table := range []string{"messages", "conversations", "ads", "users"} {
		if _, err := dbConn.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	userIDs := make([]int, 0, len(seedUsers))
	for _, u := range seedUsers {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), 12)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		token, err := tokens.GenerateAccessToken()
		if err != nil {
			return fmt.Errorf("failed to generate seed token: %w", err)
		}
		res, err := dbConn.Exec(
			"INSERT INTO users (name, email, password, access_token, created_at) VALUES (?, ?, ?, ?, ?)",
			u.name, u.email, string(hashed), token, time.Now())
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.name, err)
		}
		id, _ := res.LastInsertId()
		userIDs = append(userIDs, int(id))
	}

	for i, a := range seedAds {
		imageID := fmt.Sprintf("seed-%d", i+1)
		_, err := dbConn.Exec(
			"INSERT INTO ads (title, info, price, category, location, delivery, image_url, image_id, seller_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			a.title, a.info, a.price, a.category, a.location, a.delivery,
			"https://placehold.co/600x400", imageID, userIDs[a.seller], time.Now())
		if err != nil {
			return fmt.Errorf("failed to seed ad %q: %w", a.title, err)
		}
	}

	logger.Info("Database seeded", zap.Int("users", len(seedUsers)), zap.Int("ads", len(seedAds)))
	return nil
}
