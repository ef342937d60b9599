package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"products-api/internal/config"
	"products-api/internal/database"
	"products-api/internal/logging"
	"products-api/internal/seed"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer closeStore(context.Background())

	log.WithField("source", cfg.Seed.SourceURL).Info("seeding products")
	res, err := seed.NewSeeder(store, nil, cfg.Seed.SourceURL, cfg.Seed.Limit, log).Run(ctx)
	if err != nil {
		log.WithError(err).Error("seed failed")
		closeStore(context.Background())
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"fetched":  res.Fetched,
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
	}).Info("seed finished")
}
