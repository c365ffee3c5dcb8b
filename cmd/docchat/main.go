package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lcamargo/docchat/internal/app"
	"github.com/lcamargo/docchat/internal/config"
	"github.com/lcamargo/docchat/internal/session"
	"go.uber.org/fx"
)

func main() {
	backendFlag := flag.String("backend", "", "backend base URL (overrides config)")
	flag.Parse()

	cfg, err := config.Load(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	config.ApplyEnv(cfg)
	if *backendFlag != "" {
		cfg.BackendURL = *backendFlag
	}

	fxApp := fx.New(
		app.Module(app.Params{Config: cfg}),
		fx.NopLogger,
	)

	fxApp.Run()
}
