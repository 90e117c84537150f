package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := LoadConfig()
	setLogLevel(cfg.LogLevel)
	log.Info().
		Str("db", cfg.DBPath).
		Str("driver", cfg.DBDriver).
		Bool("events", cfg.RabbitURL != "").
		Msg("starting bookstore inventory")

	ctx := context.Background()

	// Repo
	repo, err := NewRepository(ctx, cfg)
	must(err)
	if n := repo.Seeded(); n > 0 {
		fmt.Printf("All %d records have been entered.\n", n)
	}

	// Rabbit (opcional)
	var events Events
	rabbit, err := NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ not available, continuing without events")
	} else if rabbit != nil {
		defer rabbit.Close()
		events = rabbit
	}

	shell := NewShell(os.Stdin, os.Stdout, NewService(repo, events), repo)
	if err := shell.Run(ctx); err != nil {
		// la shell ya cerró el repo al salir
		if errors.Is(err, errStoreClose) {
			log.Error().Err(err).Msg("closing database")
			return
		}
		_ = repo.Close()
		log.Fatal().Err(err).Msg("fatal")
	}
}

func setLogLevel(s string) {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
