package ingress

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"voice-filler-gate/internal/events"
	"voice-filler-gate/internal/filler"
	"voice-filler-gate/internal/service/session"
	"voice-filler-gate/internal/service/stt"
)

// nopAdapter accepts audio and does nothing; the server drives utterance
// boundaries from the frames in these tests.
type nopAdapter struct {
	mu    sync.Mutex
	bytes int
}

func (a *nopAdapter) Start(context.Context, stt.Callback) error { return nil }

func (a *nopAdapter) SendAudio(_ context.Context, audio []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bytes += len(audio)
	return nil
}

func (a *nopAdapter) Close() error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	factory := func(ctx context.Context) (stt.Adapter, error) {
		return &nopAdapter{}, nil
	}
	classifier := filler.NewClassifier(filler.NewStaticSource("umm", "uh"))
	publisher := events.New(&events.Config{Enabled: false, Principal: "test"})
	srv := NewServer(factory, publisher, classifier, session.DefaultLimits())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func dialStream(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRouter_HealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for path, want := range map[string]string{
		"/v1/liveness":  "ok",
		"/v1/readiness": "ready",
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status %d", path, resp.StatusCode)
		}
		if string(body) != want {
			t.Errorf("%s: body %q, want %q", path, body, want)
		}
	}
}

func TestStream_AcksWithUtteranceCount(t *testing.T) {
	ts := newTestServer(t)
	conn := dialStream(t, ts)

	frames := []AudioFrame{
		{InteractionID: "int-1", TenantID: "tenant-1", Audio: make([]byte, 1600)},
		{Audio: make([]byte, 1600), AudioOffsetMs: 100},
		{EndOfUtterance: true},
		{Audio: make([]byte, 1600), AudioOffsetMs: 200},
		{EndOfUtterance: true},
		{EndOfStream: true},
	}
	for i, f := range frames {
		if err := conn.WriteJSON(f); err != nil {
			t.Fatalf("write frame %d: %v", i, err)
		}
	}

	var ack StreamAck
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Error != "" {
		t.Fatalf("unexpected ack error: %s", ack.Error)
	}
	if ack.InteractionID != "int-1" {
		t.Errorf("ack interaction: %q", ack.InteractionID)
	}
	if ack.Utterances != 2 {
		t.Errorf("expected 2 utterances, got %d", ack.Utterances)
	}
}

func TestStream_FirstFrameMustIdentify(t *testing.T) {
	ts := newTestServer(t)
	conn := dialStream(t, ts)

	if err := conn.WriteJSON(AudioFrame{Audio: []byte{1, 2, 3}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var ack StreamAck
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Error == "" {
		t.Error("expected error ack for anonymous first frame")
	}
}

func TestStream_AdapterFailureAcksError(t *testing.T) {
	factory := func(ctx context.Context) (stt.Adapter, error) {
		return nil, context.DeadlineExceeded
	}
	classifier := filler.NewClassifier(filler.NewStaticSource("umm"))
	publisher := events.New(&events.Config{Enabled: false})
	srv := NewServer(factory, publisher, classifier, session.DefaultLimits())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	conn := dialStream(t, ts)
	if err := conn.WriteJSON(AudioFrame{InteractionID: "int-1", TenantID: "tenant-1"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var ack StreamAck
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Error != "recognizer unavailable" {
		t.Errorf("expected recognizer unavailable, got %q", ack.Error)
	}
}

func TestStream_LimitBreachEndsStream(t *testing.T) {
	factory := func(ctx context.Context) (stt.Adapter, error) {
		return &nopAdapter{}, nil
	}
	classifier := filler.NewClassifier(filler.NewStaticSource("umm"))
	publisher := events.New(&events.Config{Enabled: false})
	limits := session.DefaultLimits()
	limits.MaxAudioBytes = 100
	srv := NewServer(factory, publisher, classifier, limits)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	conn := dialStream(t, ts)
	if err := conn.WriteJSON(AudioFrame{
		InteractionID: "int-1",
		TenantID:      "tenant-1",
		Audio:         make([]byte, 200),
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var ack StreamAck
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if !strings.Contains(ack.Error, "segment limit exceeded") {
		t.Errorf("expected limit error, got %q", ack.Error)
	}
}
