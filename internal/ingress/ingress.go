// Package ingress exposes the audio streaming endpoint. Clients stream JSON
// audio frames over a websocket; the server wires recognizer, filler gate,
// session handler and publisher together per connection.
package ingress

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"voice-filler-gate/internal/events"
	"voice-filler-gate/internal/filler"
	"voice-filler-gate/internal/filter"
	"voice-filler-gate/internal/observability/logging"
	"voice-filler-gate/internal/observability/metrics"
	"voice-filler-gate/internal/service/segment"
	"voice-filler-gate/internal/service/session"
	"voice-filler-gate/internal/service/stt"
)

// AdapterFactory builds a fresh STT adapter per stream.
type AdapterFactory func(ctx context.Context) (stt.Adapter, error)

// AudioFrame is one client message on the stream. Audio is base64 in the
// JSON encoding. The first frame must carry interactionId and tenantId;
// endOfUtterance forces a segment boundary, endOfStream requests the ack.
type AudioFrame struct {
	InteractionID  string `json:"interactionId"`
	TenantID       string `json:"tenantId"`
	Audio          []byte `json:"audio,omitempty"`
	AudioOffsetMs  int64  `json:"audioOffsetMs,omitempty"`
	EndOfUtterance bool   `json:"endOfUtterance,omitempty"`
	EndOfStream    bool   `json:"endOfStream,omitempty"`
}

// StreamAck closes a stream from the server side.
type StreamAck struct {
	InteractionID string `json:"interactionId"`
	Utterances    int    `json:"utterances"`
	Error         string `json:"error,omitempty"`
}

// Server handles streaming connections.
type Server struct {
	factory    AdapterFactory
	publisher  *events.Publisher
	classifier *filler.Classifier
	segments   *segment.Generator
	limits     session.Limits
	upgrader   websocket.Upgrader
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

// NewServer creates the ingress server.
func NewServer(factory AdapterFactory, publisher *events.Publisher, classifier *filler.Classifier, limits session.Limits) *Server {
	return &Server{
		factory:    factory,
		publisher:  publisher,
		classifier: classifier,
		segments:   segment.New(),
		limits:     limits,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		log:     logging.WithComponent("ingress"),
		metrics: metrics.DefaultMetrics,
	}
}

// Router builds the HTTP router: health probes plus the stream endpoint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Get("/v1/stream", s.handleStream)

	return r
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	start := time.Now()
	s.metrics.RecordStreamStart()
	success := s.serveStream(r.Context(), conn)
	s.metrics.RecordStreamEnd(success, time.Since(start).Seconds())
}

// serveStream runs one audio stream to completion. Returns whether the
// stream ended cleanly.
func (s *Server) serveStream(ctx context.Context, conn *websocket.Conn) bool {
	var first AudioFrame
	if err := conn.ReadJSON(&first); err != nil {
		s.log.Warn().Err(err).Msg("Stream ended before first frame")
		return false
	}

	if first.InteractionID == "" || first.TenantID == "" {
		_ = conn.WriteJSON(StreamAck{Error: "first frame must carry interactionId and tenantId"})
		return false
	}

	log := logging.WithInteraction(first.InteractionID, first.TenantID)

	adapter, err := s.factory(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create STT adapter")
		_ = conn.WriteJSON(StreamAck{InteractionID: first.InteractionID, Error: "recognizer unavailable"})
		return false
	}

	segmentId := s.segments.Next(first.InteractionID)
	handler := session.NewHandlerWithLimits(adapter, s.publisher, s.segments,
		first.InteractionID, first.TenantID, segmentId, s.limits)
	defer handler.Close()

	// The gate sits between the recognizer and the session handler, so
	// filler-only transcripts are dropped before they become events.
	gate := filter.NewGate(s.classifier, handler)

	if err := handler.Start(ctx, gate); err != nil {
		log.Error().Err(err).Msg("Failed to start STT session")
		_ = conn.WriteJSON(StreamAck{InteractionID: first.InteractionID, Error: "recognizer unavailable"})
		return false
	}

	log.Info().Str("segmentId", segmentId).Msg("Stream started")

	frame := first
	for {
		if len(frame.Audio) > 0 {
			if err := handler.SendAudio(ctx, frame.Audio, frame.AudioOffsetMs); err != nil {
				log.Warn().Err(err).Msg("Dropping stream")
				_ = conn.WriteJSON(StreamAck{InteractionID: first.InteractionID, Error: err.Error()})
				return false
			}
		}
		if frame.EndOfUtterance {
			handler.OnEndOfUtterance()
		}
		if frame.EndOfStream {
			break
		}

		frame = AudioFrame{}
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			log.Warn().Err(err).Msg("Stream read failed")
			handler.DropSegment("client disconnect")
			return false
		}
	}

	ack := StreamAck{
		InteractionID: first.InteractionID,
		Utterances:    handler.UtteranceCount(),
	}
	if err := conn.WriteJSON(ack); err != nil {
		log.Warn().Err(err).Msg("Failed to write stream ack")
	}
	log.Info().Int("utterances", ack.Utterances).Msg("Stream completed")
	return true
}
