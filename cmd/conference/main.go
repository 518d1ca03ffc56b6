// cmd/conference/main.go
package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"conference-service/internal/api/handlers"
	"conference-service/internal/api/responses"
	"conference-service/internal/core/analysis"
	"conference-service/internal/core/conference"
	"conference-service/internal/core/export"
	"conference-service/internal/core/matching"
	"conference-service/internal/core/parser"
)

func main() {
	_ = godotenv.Load()
	responses.InitLogger()

	conferenceService := conference.NewService(parser.NewService(), matching.NewService(), analysis.NewService())
	conferenceHandler := handlers.NewConferenceHandler(conferenceService, export.NewService())

	router := gin.Default()

	apiV1 := router.Group("/api/v1")
	{
		// Sem Middleware -- Gateway lida com isso
		apiV1.POST("/conference/analyze", conferenceHandler.HandleAnalyze)
		apiV1.POST("/conference/export", conferenceHandler.HandleExport)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "conference-service"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8084"
	}
	log.Printf("🚀 Conference Service (Go) iniciado e escutando na porta %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Falha ao iniciar o servidor de conferência: ", err)
	}
}
