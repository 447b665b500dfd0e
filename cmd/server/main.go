// Package main provides the Staya chat bot server entry point.
package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/staya/staya-chatbot-go/internal/app"
	"github.com/staya/staya-chatbot-go/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)

	application, err := app.Initialize(cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
