package events

import (
	"context"
	"testing"

	"voice-filler-gate/internal/models"
)

func TestNew_NilConfigDisabled(t *testing.T) {
	p := New(nil)

	if p.enabled {
		t.Error("expected disabled publisher for nil config")
	}
	if err := p.PublishFinal(context.Background(), "int-1", models.TranscriptFinal{Text: "hi"}); err != nil {
		t.Errorf("log-only publish should not error: %v", err)
	}
}

func TestNew_DisabledWithoutBrokers(t *testing.T) {
	p := New(&Config{
		Enabled:      true,
		Brokers:      nil,
		TopicPartial: "interaction.transcript.partial",
		TopicFinal:   "interaction.transcript.final",
		Principal:    "svc-test",
	})

	if p.enabled {
		t.Error("expected log-only mode when no brokers are configured")
	}
	if p.writerPartial != nil || p.writerFinal != nil {
		t.Error("expected no writers in log-only mode")
	}
}

func TestPublish_LogOnlyModeSucceeds(t *testing.T) {
	p := New(&Config{Enabled: false, Principal: "svc-test"})
	ctx := context.Background()

	partial := models.TranscriptPartial{
		EventType:     "interaction.transcript.partial",
		InteractionID: "int-1",
		TenantID:      "tenant-1",
		SegmentID:     "int-1-seg-1",
		Text:          "book a flight",
	}
	if err := p.PublishPartial(ctx, partial.InteractionID, partial); err != nil {
		t.Errorf("publish partial: %v", err)
	}

	final := models.TranscriptFinal{
		EventType:     "interaction.transcript.final",
		InteractionID: "int-1",
		TenantID:      "tenant-1",
		SegmentID:     "int-1-seg-1",
		Text:          "book a flight to Pune",
		Confidence:    0.96,
	}
	if err := p.PublishFinal(ctx, final.InteractionID, final); err != nil {
		t.Errorf("publish final: %v", err)
	}
}

func TestPublish_UnmarshalableEventErrors(t *testing.T) {
	p := New(&Config{Enabled: false})

	// Channels cannot be marshaled to JSON.
	if err := p.PublishFinal(context.Background(), "int-1", make(chan int)); err == nil {
		t.Error("expected marshal error")
	}
}

func TestClose_NoWritersIsNoOp(t *testing.T) {
	p := New(&Config{Enabled: false})

	if err := p.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
