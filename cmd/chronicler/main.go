package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	chroniclercmd "github.com/hearthglen/chronicler/internal/cmd/chronicler"
)

func main() {
	cfg, err := chroniclercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[CHRONICLER] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := chroniclercmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to run: %v", err)
	}
}
