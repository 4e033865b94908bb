package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"anpr-crossing/internal/auth"
	"anpr-crossing/internal/classes"
	"anpr-crossing/internal/config"
	"anpr-crossing/internal/db"
	"anpr-crossing/internal/detector"
	"anpr-crossing/internal/domain/port"
	httphandler "anpr-crossing/internal/http"
	"anpr-crossing/internal/http/middleware"
	"anpr-crossing/internal/logger"
	"anpr-crossing/internal/messaging"
	"anpr-crossing/internal/ocr"
	"anpr-crossing/internal/pipeline"
	"anpr-crossing/internal/repository"
	"anpr-crossing/internal/service"
	"anpr-crossing/internal/sink"
	"anpr-crossing/internal/storage"
	"anpr-crossing/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	names, err := classes.Load(cfg.Detection.ClassNamesPath)
	if err != nil {
		appLogger.Fatal().Err(err).Str("path", cfg.Detection.ClassNamesPath).Msg("failed to load class names")
	}

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	plateRepo := repository.NewPlateRepository(database)
	recordService := service.NewRecordService(plateRepo, appLogger)

	// R2 is optional; without it records are stored without snapshots.
	var uploader sink.SnapshotUploader
	r2Client, err := storage.NewR2Client(cfg.Storage)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		appLogger.Warn().Msg("R2 storage not configured, snapshot uploads will be disabled")
	case err != nil:
		appLogger.Fatal().Err(err).Msg("failed to initialize R2 client")
	default:
		uploader = r2Client
	}

	sinks := sink.FanOut{sink.NewDatabaseSink(plateRepo, uploader, appLogger)}

	mqttSink, err := messaging.NewMQTTSink(cfg.MQTT, appLogger)
	switch {
	case errors.Is(err, messaging.ErrNotConfigured):
		appLogger.Info().Msg("MQTT broker not configured, records will not be published")
	case err != nil:
		appLogger.Fatal().Err(err).Msg("failed to connect MQTT broker")
	default:
		defer mqttSink.Close()
		sinks = append(sinks, mqttSink)
	}

	recognizer, closeRecognizer, err := ocr.New(cfg.Recognition)
	if err != nil {
		appLogger.Fatal().Err(err).Str("engine", cfg.Recognition.Engine).Msg("failed to initialize recognizer")
	}
	defer closeRecognizer()

	crossing, err := pipeline.New(pipeline.Config{
		Zone:       cfg.Detection.Zone,
		Classes:    names,
		Threshold:  cfg.Recognition.ConfidenceThreshold,
		CropWidth:  cfg.Recognition.CropWidth,
		CropHeight: cfg.Recognition.CropHeight,
		CameraID:   cfg.CameraID,
		Snapshots:  uploader != nil,
	}, recognizer, sinks, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	source, err := vision.Open(cfg.Video.Source, cfg.Video.FrameWidth, cfg.Video.FrameHeight, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Str("source", cfg.Video.Source).Msg("failed to open video source")
	}
	defer source.Close()

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(recordService, crossing, cfg.CameraID, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	ready := func(ctx context.Context) error { return db.HealthCheck(ctx, database) }
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, ready, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().
		Str("addr", addr).
		Str("camera_id", cfg.CameraID).
		Str("zone", cfg.Detection.Zone.String()).
		Msg("starting ANPR crossing service")

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runFrameLoop(ctx, crossing, source, detector.NewClient(cfg.Detection.DetectorURL, nil, appLogger), appLogger)
	}()

	if cfg.RetentionDays > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runRetention(ctx, recordService, cfg.RetentionDays, appLogger)
		}()
	}

	<-ctx.Done()
	appLogger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	wg.Wait()
	appLogger.Info().Int("crossings", crossing.Count()).Msg("server exited")
}

func runFrameLoop(ctx context.Context, p *pipeline.Pipeline, source port.FrameSource, det port.Detector, log zerolog.Logger) {
	if err := p.Run(ctx, source, det); err != nil {
		log.Error().Err(err).Msg("frame loop stopped")
		return
	}
	log.Info().Int("crossings", p.Count()).Msg("frame loop finished")
}

func runRetention(ctx context.Context, records *service.RecordService, days int, log zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		if _, err := records.CleanupOldReads(ctx, days); err != nil {
			log.Warn().Err(err).Int("days", days).Msg("retention run failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
