// Package mock provides a mock STT adapter for running the gate without
// cloud credentials. It simulates progressive partial transcripts, exactly
// one final transcript per utterance, and utterance boundary detection. The
// simulated utterances include filler-only ones so the filler gate has
// something to suppress in local runs.
package mock

import (
	"context"
	"sync"
	"time"

	"voice-filler-gate/internal/service/stt"
)

// SimulatedUtterance is a scripted utterance with progressive transcripts.
type SimulatedUtterance struct {
	Partials   []string // Progressive partial transcripts
	Final      string   // Final transcript text
	Confidence float64  // Confidence score for final
}

// DefaultUtterances cycles real speech with filler-only noise, the mix the
// gate sees in production.
var DefaultUtterances = []SimulatedUtterance{
	{
		Partials:   []string{"Umm", "Umm, uh"},
		Final:      "Umm, uh...",
		Confidence: 0.58,
	},
	{
		Partials:   []string{"I want", "I want to", "I want to cancel"},
		Final:      "I want to cancel my subscription",
		Confidence: 0.94,
	},
	{
		Partials:   []string{"Hmm"},
		Final:      "Hmm, ok.",
		Confidence: 0.61,
	},
	{
		Partials:   []string{"Can you", "Can you help", "Can you help me with"},
		Final:      "Can you help me with my account",
		Confidence: 0.91,
	},
	{
		Partials:   []string{"umm it's", "umm it's raining"},
		Final:      "umm it's raining here",
		Confidence: 0.88,
	},
	{
		Partials:   []string{"Thank you"},
		Final:      "Thank you very much",
		Confidence: 0.98,
	},
}

// Adapter implements stt.Adapter with scripted responses.
type Adapter struct {
	cb            stt.Callback
	mu            sync.Mutex
	audioReceived int
	utterance     SimulatedUtterance
	partialIndex  int
	finalSent     bool
	closed        bool
}

// Cycles through DefaultUtterances across adapters.
var (
	utteranceCounter int
	counterMu        sync.Mutex
)

// New creates a mock STT adapter scripted with the next default utterance.
func New() *Adapter {
	counterMu.Lock()
	idx := utteranceCounter % len(DefaultUtterances)
	utteranceCounter++
	counterMu.Unlock()

	return &Adapter{utterance: DefaultUtterances[idx]}
}

// NewScripted creates a mock adapter replaying a specific utterance.
func NewScripted(u SimulatedUtterance) *Adapter {
	return &Adapter{utterance: u}
}

// Start begins a mock transcription session.
func (a *Adapter) Start(ctx context.Context, cb stt.Callback) error {
	a.cb = cb
	return nil
}

// SendAudio simulates receiving audio: each frame triggers the next partial,
// and once partials are exhausted the final plus end-of-utterance fire, the
// way silence detection would end a real utterance.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.cb == nil {
		return nil
	}

	a.audioReceived++

	if a.partialIndex < len(a.utterance.Partials) {
		partial := a.utterance.Partials[a.partialIndex]
		a.partialIndex++

		go func(text string) {
			time.Sleep(50 * time.Millisecond)
			a.mu.Lock()
			cb := a.cb
			closed := a.closed
			a.mu.Unlock()
			if !closed && cb != nil {
				cb.OnPartial(text)
			}
		}(partial)
	} else if !a.finalSent {
		a.finalSent = true

		go func() {
			time.Sleep(100 * time.Millisecond)
			a.mu.Lock()
			cb := a.cb
			closed := a.closed
			utt := a.utterance
			a.mu.Unlock()

			if !closed && cb != nil {
				cb.OnFinal(utt.Final, utt.Confidence)
				cb.OnEndOfUtterance()
			}
		}()
	}

	return nil
}

// Close ends the mock session. If the stream ended before the utterance
// completed naturally, the final is still delivered.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if !a.finalSent && a.cb != nil {
		a.finalSent = true
		cb := a.cb
		utt := a.utterance
		go func() {
			time.Sleep(100 * time.Millisecond)
			cb.OnFinal(utt.Final, utt.Confidence)
		}()
	}

	return nil
}
