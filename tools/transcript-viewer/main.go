// Transcript viewer: tails the gated transcript topics and prints what
// survived the filler gate, so an operator can eyeball what the agent
// session is actually seeing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/segmentio/kafka-go"
)

// TranscriptEvent matches the gate's partial/final payloads.
type TranscriptEvent struct {
	EventType     string  `json:"eventType"`
	InteractionID string  `json:"interactionId"`
	TenantID      string  `json:"tenantId"`
	SegmentID     string  `json:"segmentId"`
	Text          string  `json:"text"`
	Confidence    float64 `json:"confidence,omitempty"`
	AudioOffsetMs int64   `json:"audioOffsetMs,omitempty"`
	Timestamp     int64   `json:"timestamp"`
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Comma-separated Kafka brokers")
	topicPartial := flag.String("topic-partial", "interaction.transcript.partial", "Partial transcript topic")
	topicFinal := flag.String("topic-final", "interaction.transcript.final", "Final transcript topic")
	group := flag.String("group", "transcript-viewer", "Consumer group ID")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	brokerList := strings.Split(*brokers, ",")

	var wg sync.WaitGroup
	for _, topic := range []string{*topicPartial, *topicFinal} {
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			consume(ctx, brokerList, topic, *group)
		}(topic)
	}

	log.Printf("Tailing gated transcripts from %s", *brokers)
	wg.Wait()
}

func consume(ctx context.Context, brokers []string, topic, group string) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	defer r.Close()

	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Read error on %s: %v", topic, err)
			return
		}

		var ev TranscriptEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Printf("Skipping malformed event on %s: %v", topic, err)
			continue
		}

		if strings.HasSuffix(ev.EventType, ".final") {
			fmt.Printf("[FINAL   %s/%s conf=%.2f] %s\n",
				truncate(ev.InteractionID, 16), ev.SegmentID, ev.Confidence, ev.Text)
		} else {
			fmt.Printf("[partial %s/%s] %s\n",
				truncate(ev.InteractionID, 16), ev.SegmentID, ev.Text)
		}
	}
}
