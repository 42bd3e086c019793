package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frontdesk/config"
	"frontdesk/dialogue"
	"frontdesk/extract"
	"frontdesk/faq"
	"frontdesk/llm"
	"frontdesk/qualify"
	"frontdesk/server"
	"frontdesk/session"
	"frontdesk/store"
	"frontdesk/summary"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	business, err := config.LoadBusiness(cfg.BusinessPath)
	if err != nil {
		log.Fatalf("Failed to load business config: %v", err)
	}
	log.Printf("🏢 Loaded business %q: %d FAQs, %d questions, %d contact fields",
		business.Business.Name, len(business.FAQs), len(business.Questions), len(business.ContactFields))

	// Open the summary store
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// LLM client backs free-text contact extraction only
	completer, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	matcher := faq.NewMatcher(business.FAQs, business.FAQMinScore)
	slots := qualify.NewSlots(business.Questions)
	extractor := extract.NewExtractor(business.CorrectionMarkers, completer)
	router := dialogue.NewRouter(business, matcher, slots, extractor)
	builder := summary.NewBuilder(business, st)

	// Create session manager
	sessionManager, err := session.NewManager(cfg)
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}
	// Evicted sessions still get a terminal summary
	sessionManager.OnEvict = func(sess *session.CallSession) {
		builder.Finalize(sess)
	}

	// Start cleanup routine
	go sessionManager.StartCleanupRoutine(ctx)

	srv := server.New(cfg, sessionManager, router, builder, st, matcher)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
