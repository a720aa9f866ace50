package main

import (
	"log"
	"os"

	api "supportmail-backend/cmd/api"
	kbdomain "supportmail-backend/internal/knowledge/domain"
	kbRepo "supportmail-backend/internal/knowledge/repository"
	kbUsecase "supportmail-backend/internal/knowledge/usecase"
	msgdomain "supportmail-backend/internal/message/domain"
	msgRepo "supportmail-backend/internal/message/repository"
	"supportmail-backend/internal/message/scheduler"
	msgUsecase "supportmail-backend/internal/message/usecase"
	"supportmail-backend/pkg/config"
	"supportmail-backend/pkg/database"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&msgdomain.ProcessingRecord{}, &msgdomain.ResponseDraft{}, &kbdomain.Entry{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	recordRepository := msgRepo.NewGormRecordRepository(db)
	entryRepository := kbRepo.NewEntryRepository(db)

	// Seed the knowledge base on first boot
	if err := kbUsecase.SeedDefaults(entryRepository); err != nil {
		log.Printf("Warning: Failed to seed knowledge base: %v", err)
	}

	// Initialize use cases (dependency injection)
	knowledgeUsecaseInstance := kbUsecase.NewKnowledgeUsecase(entryRepository)
	messageUsecaseInstance := msgUsecase.NewMessageUsecase(recordRepository, knowledgeUsecaseInstance, cfg)

	// Initialize HTTP handler (wires AI client, mail source, seen cache)
	handler := api.NewHandler(messageUsecaseInstance, knowledgeUsecaseInstance, cfg)

	// Start the mail polling scheduler when a mail provider is configured
	if cfg.MailProvider != "" {
		pollScheduler := scheduler.NewPollScheduler(messageUsecaseInstance, cfg.PollInterval)
		pollScheduler.Start()
		defer pollScheduler.Stop()
	} else {
		log.Println("No mail provider configured, polling disabled")
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Printf("Server starting on port %s", port)
	if err := handler.Start(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
