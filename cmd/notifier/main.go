package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"commande-service/internal/worker"
	"commande-service/pkg/config"
	"commande-service/pkg/logger"
	"commande-service/pkg/rabbit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("commande-notifier", cfg.Common.LogLevel, cfg.Common.LogPretty)

	rc, err := rabbit.Connect(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareExchanges(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare exchanges failed")
	}
	if err := rabbit.DeclareNotifierQueue(rc.Ch, 50); err != nil {
		log.Fatal().Err(err).Msg("declare notifier queue failed")
	}

	deliveries, err := rabbit.NewConsumer(rc.Ch).Consume(rabbit.NotifierQueue, 50)
	if err != nil {
		log.Fatal().Err(err).Msg("consume failed")
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := &worker.Notifier{Log: log}
	go n.Run(appCtx, deliveries)

	log.Info().Msg("commande-notifier started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutdown...")
	cancel()
}
