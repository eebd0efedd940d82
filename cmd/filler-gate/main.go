package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"voice-filler-gate/internal/config"
	"voice-filler-gate/internal/events"
	"voice-filler-gate/internal/filler"
	"voice-filler-gate/internal/ingress"
	"voice-filler-gate/internal/lexicon"
	"voice-filler-gate/internal/observability"
	"voice-filler-gate/internal/observability/logging"
	"voice-filler-gate/internal/service/session"
	"voice-filler-gate/internal/service/stt"
	"voice-filler-gate/internal/service/stt/google"
	"voice-filler-gate/internal/service/stt/mock"
)

func main() {
	cfg := config.Load()

	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	ctx := context.Background()

	// Filtering must stay live even without storage: fall back to the
	// static default vocabulary if the lexicon database cannot be opened.
	var source filler.Source
	store, err := lexicon.Open(cfg.Lexicon.Path)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Lexicon.Path).
			Msg("Lexicon store unavailable, using static default vocabulary")
		source = filler.NewStaticSource(lexicon.DefaultVocabulary()...)
	} else {
		defer store.Close()
		if err := store.Initialize(ctx); err != nil {
			log.Error().Err(err).Msg("Lexicon initialization failed")
		}
		source = store
	}
	classifier := filler.NewClassifier(source)

	publisher := events.New(&events.Config{
		Enabled:      cfg.Kafka.Enabled,
		Brokers:      cfg.Kafka.Brokers,
		TopicPartial: cfg.Kafka.TopicPartial,
		TopicFinal:   cfg.Kafka.TopicFinal,
		Principal:    cfg.Kafka.Principal,
	})
	defer publisher.Close()

	factory := adapterFactory(cfg)

	obs := observability.NewServer(":" + cfg.Service.MetricsPort)
	obs.Start()

	limits := session.Limits{
		MaxAudioBytes: cfg.SegmentLimits.MaxAudioBytes,
		MaxDuration:   cfg.SegmentLimits.MaxDuration,
		MaxPartials:   cfg.SegmentLimits.MaxPartials,
	}
	srv := ingress.NewServer(factory, publisher, classifier, limits)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Service.HTTPPort,
		Handler:     srv.Router(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Service.HTTPPort).Msg("Filler gate started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Observability shutdown failed")
	}
}

// adapterFactory picks the STT provider from config. Unknown providers fall
// back to the mock so local runs never need credentials.
func adapterFactory(cfg *config.Config) ingress.AdapterFactory {
	switch cfg.STT.Provider {
	case "google":
		return func(ctx context.Context) (stt.Adapter, error) {
			return google.New(ctx, google.Config{
				LanguageCode:   cfg.STT.LanguageCode,
				SampleRateHz:   int32(cfg.STT.SampleRateHz),
				InterimResults: cfg.STT.InterimResults,
			})
		}
	default:
		return func(ctx context.Context) (stt.Adapter, error) {
			return mock.New(), nil
		}
	}
}
