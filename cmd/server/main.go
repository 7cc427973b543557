package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/api"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/auth"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/config"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/database"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/inference"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/preprocess"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/repository"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/service"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := newLogger(cfg.Logging)
	log.WithFields(logrus.Fields{
		"address":   cfg.Server.Address(),
		"model_dir": cfg.Model.Dir,
	}).Info("Starting lung scan service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewConnection(ctx, database.Config{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}, log)
	if err != nil {
		log.Fatalf("Failed to connect to document store: %v", err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.WithError(err).Warn("Document store close failed")
		}
	}()

	scans := repository.NewScanRepository(db, log)
	patients := repository.NewPatientRepository(db, log)
	doctors := repository.NewDoctorRepository(db, log)
	reports := repository.NewReportRepository(db, log)

	engine := inference.NewEngine(log)
	if err := engine.Load(cfg.Model.Dir); err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	defer engine.Close()
	if engine.Degenerate() {
		log.Warn("Loaded model is degenerate; prediction endpoints will refuse traffic")
	}

	uploads, err := storage.NewUploadStore(cfg.Uploads.Dir, log)
	if err != nil {
		log.Fatalf("Failed to prepare upload store: %v", err)
	}

	tokens, err := auth.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL, doctors, log)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}

	preprocessorFor := func(mode domain.NormalizationMode) domain.Preprocessor {
		return preprocess.New(mode, log)
	}

	server := api.NewServer(api.Deps{
		Config:     cfg,
		DB:         db,
		Engine:     engine,
		Resolver:   tokens,
		Accounts:   service.NewAccountService(doctors, tokens, log),
		Classifier: service.NewClassifierService(engine, preprocessorFor, scans, patients, uploads, log),
		Records:    service.NewRecordsService(patients, scans, log),
		Stats:      service.NewStatsService(scans, nil, log),
		Reports:    service.NewReportService(reports, log),
		Log:        log,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutdown signal received")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Info("Server stopped")
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
