package main

import (
	"context"
	"log"

	"policysim/internal/config"
	"policysim/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Warm the catalog so the first page view has data. A failure here is
	// kept in the catalog view and retried by the next refresh.
	go func() {
		if err := appContainer.Catalog.Refresh(context.Background()); err != nil {
			log.Printf("Initial catalog load failed: %v", err)
		}
	}()

	server := appContainer.Server()
	log.Printf("Policy catalog at %s, scoring at %s", appConfig.Upstream.PolicyURL, appConfig.Upstream.ScoringURL)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
