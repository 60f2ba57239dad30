package main

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/wauu/lms_backend/internal/config"
	"github.com/wauu/lms_backend/internal/database"
	"github.com/wauu/lms_backend/internal/routes"
	"github.com/wauu/lms_backend/internal/ws"
)

func main() {
	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if err := database.SeedAdmin(db, cfg); err != nil {
		log.Fatalf("admin seed failed: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadFolder, 0o755); err != nil {
		log.Fatalf("upload folder setup failed: %v", err)
	}

	hub := ws.NewAttendanceHub()
	go hub.Run()

	r := gin.Default()
	if mb, err := strconv.Atoi(cfg.MaxUploadMB); err == nil && mb > 0 {
		r.MaxMultipartMemory = int64(mb) << 20
	}
	routes.Register(r, db, cfg, hub)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Println("server exited with error:", err)
		os.Exit(1)
	}
}
