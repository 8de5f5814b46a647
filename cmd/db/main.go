package main

import (
	"log"

	"github.com/letieu/ideaflow/config"
	"github.com/letieu/ideaflow/internal/database"
)

// Applies the embedded schema to the configured database.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.NewDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.ApplySchema(); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	log.Println("DONE")
}
