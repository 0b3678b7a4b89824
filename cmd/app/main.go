package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"commande-service/internal/auth"
	"commande-service/internal/events"
	httpx "commande-service/internal/http"
	"commande-service/internal/http/handlers"
	"commande-service/internal/repo"
	"commande-service/pkg/config"
	"commande-service/pkg/logger"
	"commande-service/pkg/rabbit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("service-commande", cfg.Common.LogLevel, cfg.Common.LogPretty)

	ctxDB, cancelDB := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDB()
	db, err := pgxpool.New(ctxDB, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("pg connect failed")
	}
	defer db.Close()

	rc, err := rabbit.Connect(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareExchanges(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare exchanges failed")
	}

	issuer := auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	verifier := auth.NewVerifier(cfg.JWT.Secret)

	commandes := &handlers.Commandes{
		Store: &repo.OrdersPG{DB: db},
		Log:   log,
	}
	login := &handlers.Login{Issuer: issuer, Log: log}

	eventsMW := events.Middleware(rabbit.NewPublisher(rc.Ch, rabbit.ExchangeCommandes), log)

	router := httpx.NewRouter(&httpx.Handlers{
		Root:            handlers.Root,
		Health:          handlers.Health,
		Login:           login.ServeHTTP,
		CreateCommande:  commandes.Create,
		ListCommandes:   commandes.List,
		GetCommande:     commandes.Get,
		UpdateCommande:  commandes.Update,
		DeleteCommande:  commandes.Delete,
		ListByRevendeur: commandes.ListByRevendeur,
		ListByWebshop:   commandes.ListByWebshop,
	}, verifier, eventsMW, log)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutdown...")
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}
