// Package session coordinates one transcription session: it receives gated
// recognizer callbacks, enforces segment lifecycle and backpressure limits,
// and publishes the surviving transcript events.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"voice-filler-gate/internal/events"
	"voice-filler-gate/internal/models"
	"voice-filler-gate/internal/observability/logging"
	"voice-filler-gate/internal/observability/metrics"
	"voice-filler-gate/internal/service/segment"
	"voice-filler-gate/internal/service/stt"
)

// Limits defines safety guardrails for segment processing. They prevent
// unbounded resource usage while a stream is live.
type Limits struct {
	MaxAudioBytes int64         // Max buffered audio per segment
	MaxDuration   time.Duration // Max segment duration
	MaxPartials   int           // Max partial transcripts per segment
}

// DefaultLimits returns sensible default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxAudioBytes: 5 * 1024 * 1024, // ~625 seconds at 8kHz 16-bit mono
		MaxDuration:   5 * time.Minute,
		MaxPartials:   500,
	}
}

// TransitionCallback is invoked when an utterance ends and a new segment
// begins, with the new segment ID.
type TransitionCallback func(newSegmentId string)

// Handler manages one transcription session. It implements stt.Callback —
// normally behind the filler gate, so filler-only transcripts never reach
// segment accounting or the publisher.
type Handler struct {
	adapter       stt.Adapter
	publisher     *events.Publisher
	segmentGen    *segment.Generator
	interactionId string
	tenantId      string
	limits        Limits
	lifecycle     *segment.Lifecycle
	log           zerolog.Logger
	metrics       *metrics.Metrics

	mu                sync.RWMutex
	lastAudioOffsetMs int64
	segmentStartTime  time.Time
	audioBytes        int64
	partialCount      int
	utteranceCount    int
	onTransition      TransitionCallback
}

// NewHandler creates a session handler with default limits.
func NewHandler(adapter stt.Adapter, publisher *events.Publisher, segmentGen *segment.Generator,
	interactionId, tenantId, segmentId string) *Handler {
	return NewHandlerWithLimits(adapter, publisher, segmentGen, interactionId, tenantId, segmentId, DefaultLimits())
}

// NewHandlerWithLimits creates a session handler with custom limits.
func NewHandlerWithLimits(adapter stt.Adapter, publisher *events.Publisher, segmentGen *segment.Generator,
	interactionId, tenantId, segmentId string, limits Limits) *Handler {
	return &Handler{
		adapter:          adapter,
		publisher:        publisher,
		segmentGen:       segmentGen,
		interactionId:    interactionId,
		tenantId:         tenantId,
		limits:           limits,
		lifecycle:        segment.NewLifecycle(segmentId),
		log:              logging.WithInteraction(interactionId, tenantId),
		metrics:          metrics.DefaultMetrics,
		segmentStartTime: time.Now(),
	}
}

// SetTransitionCallback registers a callback for utterance boundaries, e.g.
// so the server can start a fresh STT session per segment.
func (h *Handler) SetTransitionCallback(cb TransitionCallback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onTransition = cb
}

// Start begins the STT session with cb as the callback receiver. Callers
// pass the filler gate wrapping this handler.
func (h *Handler) Start(ctx context.Context, cb stt.Callback) error {
	h.metrics.RecordSegmentCreated()
	return h.adapter.Start(ctx, cb)
}

// SendAudio forwards audio to the STT adapter, enforcing segment limits.
// On a limit breach the segment is dropped and an error returned.
func (h *Handler) SendAudio(ctx context.Context, audio []byte, audioOffsetMs int64) error {
	h.mu.Lock()
	h.lastAudioOffsetMs = audioOffsetMs
	h.audioBytes += int64(len(audio))
	currentBytes := h.audioBytes
	startTime := h.segmentStartTime
	h.mu.Unlock()

	h.metrics.RecordAudioReceived(len(audio))

	if h.limits.MaxAudioBytes > 0 && currentBytes > h.limits.MaxAudioBytes {
		reason := fmt.Sprintf("max audio bytes exceeded: %d > %d", currentBytes, h.limits.MaxAudioBytes)
		h.DropSegment(reason)
		return fmt.Errorf("segment limit exceeded: %s", reason)
	}

	if h.limits.MaxDuration > 0 && time.Since(startTime) > h.limits.MaxDuration {
		reason := fmt.Sprintf("max duration exceeded: %v > %v", time.Since(startTime), h.limits.MaxDuration)
		h.DropSegment(reason)
		return fmt.Errorf("segment limit exceeded: %s", reason)
	}

	return h.adapter.SendAudio(ctx, audio)
}

// Close ends the STT session and closes the current segment.
func (h *Handler) Close() error {
	h.lifecycle.Close()
	return h.adapter.Close()
}

// SegmentId returns the current segment ID.
func (h *Handler) SegmentId() string {
	return h.lifecycle.SegmentId()
}

// SegmentState returns the current segment lifecycle state.
func (h *Handler) SegmentState() segment.State {
	return h.lifecycle.State()
}

// UtteranceCount returns the number of utterances processed.
func (h *Handler) UtteranceCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.utteranceCount
}

// IsSegmentDropped reports whether the current segment was dropped.
func (h *Handler) IsSegmentDropped() bool {
	return h.lifecycle.IsDropped()
}

// DropSegment abandons the current segment without emitting a final. Used on
// limit breaches, client disconnects, or validation failures. Returns
// whether this call dropped it.
func (h *Handler) DropSegment(reason string) bool {
	segmentId := h.lifecycle.SegmentId()
	oldState := h.lifecycle.State()

	dropped := h.lifecycle.Drop()
	if dropped {
		h.metrics.RecordSegmentDropped(reason)
	}

	h.log.Warn().
		Str("segmentId", segmentId).
		Stringer("previousState", oldState).
		Str("reason", reason).
		Msg("Segment dropped")

	return dropped
}

// --- stt.Callback implementation ---

// OnPartial publishes an interim transcript if the segment accepts it and
// the partial budget is not exhausted.
func (h *Handler) OnPartial(text string) {
	if err := h.lifecycle.EmitPartial(); err != nil {
		h.log.Debug().
			Str("segmentId", h.lifecycle.SegmentId()).
			Stringer("state", h.lifecycle.State()).
			Err(err).
			Msg("Partial ignored")
		return
	}

	h.mu.Lock()
	h.partialCount++
	count := h.partialCount
	h.mu.Unlock()

	if h.limits.MaxPartials > 0 && count > h.limits.MaxPartials {
		h.DropSegment(fmt.Sprintf("max partials exceeded: %d > %d", count, h.limits.MaxPartials))
		return
	}

	ev := models.TranscriptPartial{
		EventType:     "interaction.transcript.partial",
		InteractionID: h.interactionId,
		TenantID:      h.tenantId,
		SegmentID:     h.lifecycle.SegmentId(),
		Text:          text,
		Timestamp:     time.Now().UnixMilli(),
	}
	if err := h.publisher.PublishPartial(context.Background(), h.interactionId, ev); err != nil {
		h.log.Error().Err(err).Str("segmentId", ev.SegmentID).Msg("Failed to publish partial")
	}
}

// OnFinal publishes the final transcript, at most once per segment.
func (h *Handler) OnFinal(text string, confidence float64) {
	if err := h.lifecycle.EmitFinal(); err != nil {
		h.log.Debug().
			Str("segmentId", h.lifecycle.SegmentId()).
			Stringer("state", h.lifecycle.State()).
			Err(err).
			Msg("Final ignored")
		return
	}

	h.mu.RLock()
	audioOffsetMs := h.lastAudioOffsetMs
	h.mu.RUnlock()

	h.metrics.RecordSegmentCompleted()

	ev := models.TranscriptFinal{
		EventType:     "interaction.transcript.final",
		InteractionID: h.interactionId,
		TenantID:      h.tenantId,
		SegmentID:     h.lifecycle.SegmentId(),
		Text:          text,
		Confidence:    confidence,
		AudioOffsetMs: audioOffsetMs,
		Timestamp:     time.Now().UnixMilli(),
	}
	if err := h.publisher.PublishFinal(context.Background(), h.interactionId, ev); err != nil {
		h.log.Error().Err(err).Str("segmentId", ev.SegmentID).Msg("Failed to publish final")
	}
}

// OnEndOfUtterance closes the current segment and opens the next one,
// resetting the per-segment budgets.
func (h *Handler) OnEndOfUtterance() {
	oldSegmentId := h.lifecycle.SegmentId()
	oldState := h.lifecycle.State()

	h.lifecycle.Close()
	h.metrics.RecordUtterance()

	h.mu.Lock()
	h.utteranceCount++
	oldAudioBytes := h.audioBytes
	oldPartialCount := h.partialCount
	oldDuration := time.Since(h.segmentStartTime)

	h.audioBytes = 0
	h.partialCount = 0
	h.segmentStartTime = time.Now()

	var newSegmentId string
	if h.segmentGen != nil {
		newSegmentId = h.segmentGen.Next(h.interactionId)
	} else {
		newSegmentId = oldSegmentId + "-next"
	}
	cb := h.onTransition
	h.mu.Unlock()

	h.lifecycle.Reset(newSegmentId)
	h.metrics.RecordSegmentCreated()

	h.log.Info().
		Str("oldSegment", oldSegmentId).
		Stringer("oldState", oldState).
		Str("newSegment", newSegmentId).
		Int("utterance", h.UtteranceCount()).
		Int64("audioBytes", oldAudioBytes).
		Int("partials", oldPartialCount).
		Dur("duration", oldDuration.Round(time.Millisecond)).
		Msg("End of utterance")

	if cb != nil {
		cb(newSegmentId)
	}
}

// OnError drops the current segment: no final is emitted after an STT error.
// Better to emit nothing than incorrect or incomplete data.
func (h *Handler) OnError(err error) {
	segmentId := h.lifecycle.SegmentId()
	oldState := h.lifecycle.State()

	dropped := h.lifecycle.Drop()
	if dropped {
		h.metrics.RecordSegmentDropped("stt_error")
	}

	h.log.Error().
		Str("segmentId", segmentId).
		Stringer("previousState", oldState).
		Bool("dropped", dropped).
		Err(err).
		Msg("STT error, segment dropped")
}

// Metrics holds current segment usage counters.
type Metrics struct {
	AudioBytes   int64
	PartialCount int
	Duration     time.Duration
}

// SegmentMetrics returns current segment usage for observability.
func (h *Handler) SegmentMetrics() Metrics {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Metrics{
		AudioBytes:   h.audioBytes,
		PartialCount: h.partialCount,
		Duration:     time.Since(h.segmentStartTime),
	}
}
