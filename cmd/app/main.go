package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/andreyxaxa/Image-Hosting/config"
	"github.com/andreyxaxa/Image-Hosting/internal/app"
	"github.com/andreyxaxa/Image-Hosting/pkg/logger"
	"github.com/joho/godotenv"
)

const _defaultEnvFile = ".env"

func main() {
	l := logger.New(os.Getenv("LOG_LEVEL"))

	// Config
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = _defaultEnvFile
	}

	// variables already in the environment win over the file
	err := godotenv.Load(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		l.Fatal(err, "main - godotenv.Load - %s", envFile)
	}

	cfg, err := config.New()
	if err != nil {
		l.Fatal(err, "main - config.New")
	}

	// Run
	app.Run(cfg)
}
