package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gvidela/limitereal/app"
)

func main() {
	// optional local overrides
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := &app.App{}
	if err := a.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
