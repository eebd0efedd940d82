package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Service.Principal != "svc-filler-gate" {
		t.Errorf("principal: got %q", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" || cfg.Service.MetricsPort != "9090" {
		t.Errorf("ports: got %q/%q", cfg.Service.HTTPPort, cfg.Service.MetricsPort)
	}
	if cfg.STT.Provider != "mock" {
		t.Errorf("provider: got %q", cfg.STT.Provider)
	}
	if cfg.STT.LanguageCode != "en-US" || cfg.STT.SampleRateHz != 8000 || !cfg.STT.InterimResults {
		t.Errorf("stt defaults: %+v", cfg.STT)
	}
	if cfg.Kafka.Enabled {
		t.Error("kafka should default to disabled")
	}
	if cfg.Kafka.TopicPartial != "interaction.transcript.partial" ||
		cfg.Kafka.TopicFinal != "interaction.transcript.final" {
		t.Errorf("topics: %q / %q", cfg.Kafka.TopicPartial, cfg.Kafka.TopicFinal)
	}
	if cfg.Kafka.Principal != cfg.Service.Principal {
		t.Errorf("kafka principal should fall back to service principal, got %q", cfg.Kafka.Principal)
	}
	if cfg.Lexicon.Path != "filler_words.db" {
		t.Errorf("lexicon path: got %q", cfg.Lexicon.Path)
	}
	if cfg.SegmentLimits.MaxAudioBytes != 5*1024*1024 ||
		cfg.SegmentLimits.MaxDuration != 5*time.Minute ||
		cfg.SegmentLimits.MaxPartials != 500 {
		t.Errorf("segment limits: %+v", cfg.SegmentLimits)
	}
	if cfg.Observability.LogLevel != "info" || cfg.Observability.LogFormat != "json" {
		t.Errorf("observability: %+v", cfg.Observability)
	}
}

func TestLoad_CustomEnvironment(t *testing.T) {
	t.Setenv("SERVICE_PRINCIPAL", "svc-custom")
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("STT_PROVIDER", "google")
	t.Setenv("STT_SAMPLE_RATE_HZ", "16000")
	t.Setenv("STT_INTERIM_RESULTS", "false")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("LEXICON_DB_PATH", "/var/lib/gate/lexicon.db")
	t.Setenv("SEGMENT_MAX_DURATION", "90s")
	t.Setenv("SEGMENT_MAX_PARTIALS", "50")
	t.Setenv("LOG_FORMAT", "console")

	cfg := Load()

	if cfg.Service.Principal != "svc-custom" || cfg.Service.HTTPPort != "9999" {
		t.Errorf("service: %+v", cfg.Service)
	}
	if cfg.STT.Provider != "google" || cfg.STT.SampleRateHz != 16000 || cfg.STT.InterimResults {
		t.Errorf("stt: %+v", cfg.STT)
	}
	if !cfg.Kafka.Enabled {
		t.Error("kafka should be enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "kafka-1:9092" || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("brokers should be split and trimmed: %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.Principal != "svc-custom" {
		t.Errorf("kafka principal: got %q", cfg.Kafka.Principal)
	}
	if cfg.Lexicon.Path != "/var/lib/gate/lexicon.db" {
		t.Errorf("lexicon path: got %q", cfg.Lexicon.Path)
	}
	if cfg.SegmentLimits.MaxDuration != 90*time.Second || cfg.SegmentLimits.MaxPartials != 50 {
		t.Errorf("segment limits: %+v", cfg.SegmentLimits)
	}
	if cfg.Observability.LogFormat != "console" {
		t.Errorf("log format: got %q", cfg.Observability.LogFormat)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STT_SAMPLE_RATE_HZ", "not-a-number")
	t.Setenv("KAFKA_ENABLED", "maybe")
	t.Setenv("SEGMENT_MAX_DURATION", "soon")
	t.Setenv("KAFKA_BROKERS", " , ,")

	cfg := Load()

	if cfg.STT.SampleRateHz != 8000 {
		t.Errorf("sample rate should fall back, got %d", cfg.STT.SampleRateHz)
	}
	if cfg.Kafka.Enabled {
		t.Error("unparsable bool should fall back to false")
	}
	if cfg.SegmentLimits.MaxDuration != 5*time.Minute {
		t.Errorf("duration should fall back, got %v", cfg.SegmentLimits.MaxDuration)
	}
	if cfg.Kafka.Brokers != nil {
		t.Errorf("whitespace-only brokers should fall back to nil, got %v", cfg.Kafka.Brokers)
	}
}
