package main

import (
	"context"
	"fmt"
	"log"

	"github.com/goliatone/go-boards/app"
	"github.com/goliatone/go-boards/config"
)

func main() {
	cfg, err := config.Load(config.WithDotEnv(".env"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.IsDevelopment() {
		fmt.Println("============")
		fmt.Println(cfg.Dump())
		fmt.Println("============")
	}

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("app: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
