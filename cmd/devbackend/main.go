package main

import (
	"log"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"hrms-console/config"
	"hrms-console/internal/devbackend"
	_ "hrms-console/migrations"
)

// Runs a local HRMS backend: go run ./cmd/devbackend serve --http=127.0.0.1:8000
func main() {
	cfg, err := config.LoadDevBackendConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	app := pocketbase.New()
	backend := devbackend.New(app, devbackend.Options{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		Tokens:        devbackend.NewTokens(cfg.JWTSecret, 24*time.Hour),
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		backend.Bind(se)
		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
