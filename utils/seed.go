package utils

import (
	"context"
	"log"
	"time"

	"ecolens/models"
	"ecolens/storage"
)

// SeedDemoUsers inserts sample users so the app is usable out of the box
// with the in-memory store. All demo accounts share the password "greencoins".
func SeedDemoUsers(store storage.Store) {
	hash, err := HashPassword("greencoins")
	if err != nil {
		log.Printf("Error hashing demo password: %v", err)
		return
	}

	users := []models.User{
		{
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: hash,
			CreatedAt:    time.Now(),
		},
		{
			Username:     "bob",
			Email:        "bob@example.com",
			PasswordHash: hash,
			CreatedAt:    time.Now(),
		},
	}

	ctx := context.Background()
	for i := range users {
		if err := store.CreateUser(ctx, &users[i]); err != nil && err != storage.ErrDuplicate {
			log.Printf("Error seeding user %s: %v", users[i].Username, err)
		}
	}
}
