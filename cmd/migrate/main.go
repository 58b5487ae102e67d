package main

import (
	"context"
	"flag"
	"log"

	"marknotes-be/internal/config"
	"marknotes-be/internal/model"
	"marknotes-be/pkg/database"
	"marknotes-be/pkg/searchindex"

	"gorm.io/gorm"
)

func main() {
	reindex := flag.Bool("reindex", false, "rebuild the search index from the notes table after migrating")
	flag.Parse()

	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDB(cfg.Database.Connection, database.PoolConfig{
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: extensions GORM AutoMigrate doesn't handle
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	models := []interface{}{
		&model.User{},
		&model.Note{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}
	log.Println("Migration complete.")

	if !*reindex {
		return
	}

	// 5. Full reindex: walk the notes table and upsert every row into the
	// search index. Safe to re-run; indexing is idempotent per note id.
	log.Println("Rebuilding search index...")

	index, err := searchindex.Open(cfg.Search.IndexPath)
	if err != nil {
		log.Fatalf("Error: Failed to open search index at %s: %v", cfg.Search.IndexPath, err)
	}
	defer index.Close()

	ctx := context.Background()
	var indexed int64
	var notes []model.Note
	result := db.FindInBatches(&notes, 500, func(tx *gorm.DB, batch int) error {
		for i := range notes {
			doc := searchindex.NoteDocument{
				Id:         notes[i].Id,
				OwnerId:    notes[i].UserId,
				Title:      notes[i].Title,
				IsArchived: notes[i].IsArchived,
				CreatedAt:  notes[i].CreatedAt,
			}
			if err := index.Index(ctx, doc); err != nil {
				return err
			}
			indexed++
		}
		return nil
	})
	if result.Error != nil {
		log.Fatal("Error: Reindex failed:", result.Error)
	}

	log.Printf("Reindex complete: %d notes indexed.", indexed)
}
