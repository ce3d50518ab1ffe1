// Command seed writes the default category set for a user who owns
// no categories yet. Safe to rerun; a user with any categories is
// left untouched.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"spendly/backend/config"
	"spendly/backend/firebase"
	"spendly/backend/store"
)

func main() {
	uid := flag.String("uid", "", "user id to seed categories for")
	flag.Parse()

	if *uid == "" {
		log.Fatal("missing required -uid flag")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	fb, err := firebase.Init(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer fb.Firestore.Close()

	backend := store.NewFirestoreStore(fb.Firestore)
	categories, err := store.NewCategoryStore(ctx, backend, *uid, nil)
	if err != nil {
		log.Fatalf("Failed to open category store: %v", err)
	}
	defer categories.Close()

	if err := categories.Seed(ctx); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Println("Seeding completed successfully!")
}
