// Package filter implements the filler gate: a stateless pass-through stage
// that drops filler-only transcript events so they cannot trigger false
// interruptions of the agent, and forwards everything else unchanged.
package filter

import (
	"context"

	"github.com/rs/zerolog"

	"voice-filler-gate/internal/filler"
	"voice-filler-gate/internal/models"
	"voice-filler-gate/internal/observability/logging"
	"voice-filler-gate/internal/observability/metrics"
	"voice-filler-gate/internal/service/stt"
)

// Gate wraps an stt.Callback and suppresses filler-only transcripts before
// they reach it. Order and the interim/final distinction are preserved for
// everything forwarded; errors and utterance boundaries always pass through.
type Gate struct {
	classifier *filler.Classifier
	next       stt.Callback
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

// NewGate creates a gate in front of next.
func NewGate(classifier *filler.Classifier, next stt.Callback) *Gate {
	return &Gate{
		classifier: classifier,
		next:       next,
		log:        logging.WithComponent("filler-gate"),
		metrics:    metrics.DefaultMetrics,
	}
}

// OnPartial forwards the interim transcript unless it is filler-only.
func (g *Gate) OnPartial(text string) {
	g.metrics.RecordEventReceived(string(models.KindInterim))
	if g.classifier.IsFillerOnly(context.Background(), text) {
		g.metrics.RecordEventFiltered(string(models.KindInterim))
		g.log.Debug().Str("text", text).Msg("Filtered filler-only interim transcript")
		return
	}
	g.metrics.RecordEventPassed(string(models.KindInterim))
	g.next.OnPartial(text)
}

// OnFinal forwards the final transcript unless it is filler-only.
func (g *Gate) OnFinal(text string, confidence float64) {
	g.metrics.RecordEventReceived(string(models.KindFinal))
	if g.classifier.IsFillerOnly(context.Background(), text) {
		g.metrics.RecordEventFiltered(string(models.KindFinal))
		g.log.Info().Str("text", text).Msg("Detected only filler words, suppressing final transcript")
		return
	}
	g.metrics.RecordEventPassed(string(models.KindFinal))
	g.next.OnFinal(text, confidence)
}

// OnEndOfUtterance always forwards: the boundary belongs to turn-taking, not
// to transcript content.
func (g *Gate) OnEndOfUtterance() {
	g.next.OnEndOfUtterance()
}

// OnError always forwards.
func (g *Gate) OnError(err error) {
	g.next.OnError(err)
}

// Events returns a channel carrying every event from in except filler-only
// transcripts, in input order. For hosts that consume an event sequence
// rather than a callback. The returned channel closes when in closes or ctx
// is done.
func Events(ctx context.Context, classifier *filler.Classifier, in <-chan models.TranscriptEvent) <-chan models.TranscriptEvent {
	out := make(chan models.TranscriptEvent)
	m := metrics.DefaultMetrics
	log := logging.WithComponent("filler-gate")

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-in:
				if !ok {
					return
				}
				m.RecordEventReceived(string(ev.Kind))
				if classifier.IsFillerOnly(ctx, ev.Text) {
					m.RecordEventFiltered(string(ev.Kind))
					if ev.Kind == models.KindFinal {
						log.Info().Str("text", ev.Text).Msg("Detected only filler words, suppressing final transcript")
					}
					continue
				}
				m.RecordEventPassed(string(ev.Kind))
				select {
				case <-ctx.Done():
					return
				case out <- ev:
				}
			}
		}
	}()
	return out
}
