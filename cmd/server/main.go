package main

import (
	"log"
	"net/http"
	"os"

	_ "notehub/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"notehub/internal/auth"
	"notehub/internal/cache"
	"notehub/internal/config"
	"notehub/internal/db"
	"notehub/internal/handler"
	"notehub/internal/model"
	"notehub/internal/repository"
	"notehub/internal/router"
	"notehub/internal/service"
)

// @title Notehub API
// @version 1.0
// @description Note-taking API with attachments, search, favorites and stubbed transcription.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.StoredFile{},
			&model.Note{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Note{},
		&model.StoredFile{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}
	if err := db.EnsureFulltextIndexes(gormDB); err != nil {
		log.Fatalf("fulltext indexes: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	noteRepo := repository.NewNoteRepository(gormDB)
	fileRepo := repository.NewFileRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	noteService := service.NewNoteService(noteRepo, service.NewAttachmentValidator(), cacheClient)
	fileService := service.NewFileService(fileRepo)
	transcriptionService := service.NewTranscriptionService(noteRepo, cacheClient, service.DefaultTranscriptionDelay)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	noteHandler := handler.NewNoteHandler(noteService)
	fileHandler := handler.NewFileHandler(fileService)
	transcribeHandler := handler.NewTranscribeHandler(transcriptionService)

	// Register routes
	router.Register(
		e,
		jwtService,
		authHandler,
		noteHandler,
		fileHandler,
		transcribeHandler,
	)

	if cfg.SwaggerHost != "" {
		log.Printf("Swagger documentation available at: %s/swagger/index.html", cfg.SwaggerHost)
	} else {
		log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
