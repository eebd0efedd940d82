package mock

import (
	"context"
	"sync"
	"testing"
	"time"
)

// testCallback collects results behind a mutex; the adapter delivers them
// from goroutines.
type testCallback struct {
	mu             sync.Mutex
	partials       []string
	finals         []string
	confidences    []float64
	endOfUtterance int
	errs           []error
}

func (c *testCallback) OnPartial(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partials = append(c.partials, text)
}

func (c *testCallback) OnFinal(text string, confidence float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finals = append(c.finals, text)
	c.confidences = append(c.confidences, confidence)
}

func (c *testCallback) OnEndOfUtterance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endOfUtterance++
}

func (c *testCallback) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *testCallback) snapshot() (partials, finals []string, boundaries int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.partials...), append([]string(nil), c.finals...), c.endOfUtterance
}

// waitFor polls until cond is true or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestAdapter_ProgressivePartialsThenFinal(t *testing.T) {
	utterance := SimulatedUtterance{
		Partials:   []string{"I want", "I want to cancel"},
		Final:      "I want to cancel my subscription",
		Confidence: 0.94,
	}
	a := NewScripted(utterance)
	cb := &testCallback{}
	ctx := context.Background()

	if err := a.Start(ctx, cb); err != nil {
		t.Fatalf("start: %v", err)
	}

	frame := make([]byte, 1600)
	// Two frames for the two partials, one more to trigger the final.
	for i := 0; i < 3; i++ {
		if err := a.SendAudio(ctx, frame); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	waitFor(t, func() bool {
		partials, finals, boundaries := cb.snapshot()
		return len(partials) == 2 && len(finals) == 1 && boundaries == 1
	})

	partials, finals, _ := cb.snapshot()
	if partials[0] != "I want" || partials[1] != "I want to cancel" {
		t.Errorf("partials out of order: %v", partials)
	}
	if finals[0] != utterance.Final {
		t.Errorf("wrong final: %q", finals[0])
	}
	cb.mu.Lock()
	conf := cb.confidences[0]
	cb.mu.Unlock()
	if conf != 0.94 {
		t.Errorf("wrong confidence: %v", conf)
	}
}

func TestAdapter_FinalSentOnce(t *testing.T) {
	a := NewScripted(SimulatedUtterance{Final: "hello", Confidence: 0.9})
	cb := &testCallback{}
	ctx := context.Background()

	if err := a.Start(ctx, cb); err != nil {
		t.Fatalf("start: %v", err)
	}

	// No partials scripted: every frame after the first is past the final.
	for i := 0; i < 5; i++ {
		if err := a.SendAudio(ctx, []byte{1, 2, 3}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	waitFor(t, func() bool {
		_, finals, _ := cb.snapshot()
		return len(finals) >= 1
	})
	time.Sleep(200 * time.Millisecond)

	if _, finals, _ := cb.snapshot(); len(finals) != 1 {
		t.Errorf("expected exactly one final, got %v", finals)
	}
}

func TestAdapter_CloseDeliversPendingFinal(t *testing.T) {
	a := NewScripted(SimulatedUtterance{
		Partials:   []string{"Thank"},
		Final:      "Thank you very much",
		Confidence: 0.98,
	})
	cb := &testCallback{}
	ctx := context.Background()

	if err := a.Start(ctx, cb); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := a.SendAudio(ctx, []byte{1}); err != nil {
		t.Fatalf("send: %v", err)
	}

	// Stream ends before the utterance completes; the final still arrives.
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	waitFor(t, func() bool {
		_, finals, _ := cb.snapshot()
		return len(finals) == 1
	})
}

func TestAdapter_SendAfterCloseIsNoOp(t *testing.T) {
	a := NewScripted(SimulatedUtterance{Final: "hello", Confidence: 0.9})
	cb := &testCallback{}
	ctx := context.Background()

	if err := a.Start(ctx, cb); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	waitFor(t, func() bool {
		_, finals, _ := cb.snapshot()
		return len(finals) == 1
	})

	if err := a.SendAudio(ctx, []byte{1}); err != nil {
		t.Fatalf("send after close: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	partials, finals, _ := cb.snapshot()
	if len(partials) != 0 || len(finals) != 1 {
		t.Errorf("expected no deliveries after close, got partials=%v finals=%v", partials, finals)
	}
}

func TestNew_CyclesDefaultUtterances(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < len(DefaultUtterances); i++ {
		a := New()
		seen[a.utterance.Final] = true
	}
	if len(seen) != len(DefaultUtterances) {
		t.Errorf("expected %d distinct utterances, got %d", len(DefaultUtterances), len(seen))
	}
}
