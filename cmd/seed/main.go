package main

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"notehub/internal/config"
	"notehub/internal/db"
	"notehub/internal/model"
	"notehub/internal/repository"
)

// Seeds a demo user with a few notes for local development.
func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.User{}, &model.Note{}, &model.StoredFile{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}
	if err := db.EnsureFulltextIndexes(gormDB); err != nil {
		log.Fatalf("fulltext indexes: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)
	notes := repository.NewNoteRepository(gormDB)

	const demoEmail = "demo@example.com"
	user, err := users.FindByEmail(ctx, demoEmail)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("find demo user: %v", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		user = &model.User{Name: "Demo User", Email: demoEmail, PasswordHash: string(hash)}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("create demo user: %v", err)
		}
		log.Printf("created demo user %s", demoEmail)
	}

	seedNotes := []model.Note{
		{OwnerID: user.ID, Title: "Groceries", Content: "milk eggs bread"},
		{OwnerID: user.ID, Title: "Meeting notes", Content: "discuss roadmap and hiring", IsFavorite: true},
		{OwnerID: user.ID, Title: "Ideas", Content: "note-taking app with voice memos"},
	}

	existing, err := notes.FindByOwner(ctx, user.ID, repository.NoteFilter{})
	if err != nil {
		log.Fatalf("list notes: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("demo user already has %d notes, skipping", len(existing))
		return
	}

	for i := range seedNotes {
		if err := notes.Create(ctx, &seedNotes[i]); err != nil {
			log.Fatalf("create note %q: %v", seedNotes[i].Title, err)
		}
	}
	log.Printf("seeded %d notes for %s", len(seedNotes), demoEmail)
}
