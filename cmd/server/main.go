package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeongseonghan/semcom/internal/config"
	"github.com/jeongseonghan/semcom/internal/link"
	"github.com/jeongseonghan/semcom/internal/llm"
	"github.com/jeongseonghan/semcom/internal/semantic"
	"github.com/jeongseonghan/semcom/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Server address (overrides config)")
	staticDir := flag.String("static", "", "Static file directory (overrides config)")
	ebn0 := flag.Float64("ebno", 0, "Default Eb/N0 in dB (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "static":
			cfg.StaticDir = *staticDir
		case "ebno":
			cfg.DefaultEbN0dB = *ebn0
		}
	})

	codec, err := cfg.Codec()
	if err != nil {
		log.Fatalf("Failed to build codec: %v", err)
	}

	llmClient := llm.NewClient(cfg.OpenAIKey, cfg.GeminiKey)
	log.Printf("LLM provider: %s", llmClient.Provider())

	var scorer *semantic.Scorer
	if cfg.EmbedderURL != "" {
		scorer = semantic.NewScorer(semantic.NewHTTPEmbedder(cfg.EmbedderURL))
		log.Printf("Embedding service: %s", cfg.EmbedderURL)
	} else {
		log.Printf("No embedding service configured; similarity endpoints disabled")
	}

	handlers := server.NewHandlers(link.New(codec), llmClient, scorer, cfg.DefaultEbN0dB)
	srv := server.NewServer(cfg.Addr, handlers, cfg.StaticDir)

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
}
