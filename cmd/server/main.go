package main

import (
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/research-intel/research-hub/pkg/config"
	"github.com/research-intel/research-hub/pkg/research"
	"github.com/research-intel/research-hub/pkg/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Service Configuration
	cfg := config.Load()
	rcfg := research.Config{
		TavilyApiKey:   cfg.TavilyApiKey,
		LMStudioURL:    cfg.LMStudioURL,
		Model:          cfg.Model,
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
		Temperature:    &cfg.Temperature,
		MaxTokens:      cfg.MaxTokens,
	}

	// Initialize Service & Handler
	svc := server.NewService(rcfg)
	handler := server.NewHandler(svc)

	// Web Server Setup
	r := gin.Default()

	// CORS Setup
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Allow all for dev
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	handler.RegisterRoutes(r)

	port := cfg.Port
	if port == "" {
		port = "8081"
	}

	fmt.Printf("Server starting on port %s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
