package main

import (
	"os"
	"strconv"

	"eventreg/internal/backup"
	"eventreg/internal/db"
	"eventreg/internal/logging"
	mcptools "eventreg/internal/mcp"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	// stdout carries the protocol, so logs are JSON on stderr
	logging.Setup(os.Getenv("LOG_LEVEL"), "json")

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./eventreg.db"
	}

	database, err := db.Open(dbPath, db.Options{})
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("failed to open database")
	}
	defer database.Close()

	var bm *backup.Manager
	if dir := os.Getenv("BACKUP_DIR"); dir != "" {
		retention, _ := strconv.Atoi(os.Getenv("BACKUP_RETENTION_DAYS"))
		bm, err = backup.NewManager(dir, database, retention)
		if err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to prepare backup directory")
		}
	}

	s := server.NewMCPServer(
		"eventreg",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	mcptools.RegisterTools(s, database, bm)

	if err := server.ServeStdio(s); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
