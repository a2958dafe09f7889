package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/nft-socials/nft-socials-app-sub000/internal/app"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/config"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/logger"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")

	flags := config.ParseCommandFlags()
	eff, err := config.LoadEffective(flags)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("startup failed", err, eff.DBPath, 0)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		_ = a.Close()
		shutdown.Abort("server failed", err, eff.DBPath, 0)
	}

	if err := a.Close(); err != nil {
		log.Printf("store close: %v", err)
	}
	logger.Sync()
}
