package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/umamilabs/gurume/internal/server"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("no .env file found, using environment as-is")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := server.NewServer(logger)
	r := srv.SetupRouter()

	logger.Info().Str("port", port).Msg("starting server")
	if err := r.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
