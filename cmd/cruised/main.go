package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/internal/app"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/config"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/shutdown"
)

// build metadata, set via ldflags during release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(cfg.Logging.Level)

	// explicit flags win over env and config
	addr := addrVal
	if !setFlags["addr"] && cfg.Addr() != "" {
		addr = cfg.Addr()
	}
	dbPath := dbVal
	if !setFlags["db"] && cfg.Storage.DBPath != "" {
		dbPath = cfg.Storage.DBPath
	}

	source := "flags"
	switch {
	case len(setFlags) > 0:
		source = "flags"
	case envUsed:
		source = "env"
	case cfgPath != "":
		source = "config"
	}

	eff := config.Effective{Config: cfg, Addr: addr, DBPath: dbPath, Source: source}

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("startup failed", err, dbPath, 0)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	runErr := a.Run(ctx)

	shutdownCtx, sdCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer sdCancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown_incomplete", "error", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
