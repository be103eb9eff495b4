package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/docuchat/server/controller"
	"github.com/docuchat/server/services"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"
)

func main() {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	// Chroma holds one collection per session; collections are created and
	// dropped by the index builder as sessions grow.
	chromaClient, err := chromago.NewHTTPClient()
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v. Make sure GEMINI_API_KEY is set.", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	ollamaURL := os.Getenv("OLLAMA_URL")
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}

	gemini := services.NewGeminiService(geminiClient)
	embedder := services.NewOllamaEmbedder(httpClient, ollamaURL)
	loader := services.NewLoaderService(services.NewUniPDFExtractor(), gemini, services.NewHTMLFetcher(httpClient))
	builder := services.NewChromaIndexBuilder(chromaClient, embedder, gemini)
	summaries := services.NewSummaryService(gemini)
	fallback := services.NewFallbackService(gemini, gemini)

	ragService := services.NewRAGService(services.NewSessionStore(), loader, builder, summaries, fallback)
	ragController := controller.NewRAGController(ragService, services.NewUploadStore())

	// Optional hot folder: files dropped into WATCH_DIR are appended to a
	// dedicated session.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if watchDir := os.Getenv("WATCH_DIR"); watchDir != "" {
		watcher := services.NewWatchService(ragService)
		go watcher.Watch(watchCtx, watchDir)
	}

	router := gin.Default()

	// CORS middleware so the browser frontend can talk to us directly.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Content Q&A API",
			"version": "1.0.0",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/upload", ragController.Upload)           // Create a session from a file, url, or text
		apiV1.POST("/add-context", ragController.AddContext)  // Append content to an existing session
		apiV1.POST("/query", ragController.Query)             // Ask a question against a session
		apiV1.POST("/search-web", ragController.SearchWeb)    // Ask the web directly, no session
		apiV1.GET("/sessions/:id/summary", ragController.GetSummary)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Go Gin backend server starting on http://localhost:%s", port)
	log.Printf("Health check available at: http://localhost:%s/health", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
