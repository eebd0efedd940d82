// audioclient streams a WAV file to the filler gate's websocket endpoint,
// simulating a live caller.
package main

import (
	"encoding/binary"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"voice-filler-gate/internal/ingress"
)

// WAV header is 44 bytes for standard PCM files.
const wavHeaderSize = 44

// 100ms chunks at 8kHz 16-bit mono = 1600 bytes, sent in real time.
const chunkSize = 1600
const chunkIntervalMs = 100

func main() {
	audioFile := flag.String("audio", "testdata/sample-8khz.wav", "Path to WAV file (8kHz 16-bit mono)")
	serverURL := flag.String("server", "ws://localhost:8080/v1/stream", "Gate websocket URL")
	interactionId := flag.String("interaction", "test-audio-"+time.Now().Format("150405"), "Interaction ID")
	tenantId := flag.String("tenant", "tenant-demo", "Tenant ID")
	flag.Parse()

	f, err := os.Open(*audioFile)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		log.Fatalf("Failed to read WAV header: %v", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Fatal("Not a valid WAV file")
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Printf("WAV file: format=%d channels=%d sampleRate=%d bitsPerSample=%d",
		audioFormat, numChannels, sampleRate, bitsPerSample)

	if audioFormat != 1 { // PCM
		log.Fatal("Only PCM format supported")
	}
	if sampleRate != 8000 {
		log.Printf("Warning: Sample rate is %d Hz, expected 8000 Hz", sampleRate)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("Streaming audio: interactionId=%s tenantId=%s", *interactionId, *tenantId)

	audioChunk := make([]byte, chunkSize)
	var totalBytes int64
	var chunkNum int
	startTime := time.Now()

	for {
		n, err := f.Read(audioChunk)
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read audio: %v", err)
		}

		chunkNum++
		totalBytes += int64(n)

		frame := ingress.AudioFrame{
			InteractionID: *interactionId,
			TenantID:      *tenantId,
			Audio:         audioChunk[:n],
			AudioOffsetMs: int64(chunkNum * chunkIntervalMs),
		}
		if err := conn.WriteJSON(frame); err != nil {
			log.Fatalf("Failed to send frame: %v", err)
		}

		if chunkNum%10 == 0 {
			log.Printf("Sent %d chunks (%d bytes)", chunkNum, totalBytes)
		}
		time.Sleep(chunkIntervalMs * time.Millisecond)
	}

	// Ask the server for the ack, then wait for it.
	if err := conn.WriteJSON(ingress.AudioFrame{
		InteractionID: *interactionId,
		TenantID:      *tenantId,
		EndOfStream:   true,
	}); err != nil {
		log.Fatalf("Failed to send end of stream: %v", err)
	}

	var ack ingress.StreamAck
	if err := conn.ReadJSON(&ack); err != nil {
		log.Fatalf("Failed to read ack: %v", err)
	}
	if ack.Error != "" {
		log.Fatalf("Stream failed: %s", ack.Error)
	}

	log.Printf("Stream complete: interactionId=%s utterances=%d bytes=%d duration=%v",
		ack.InteractionID, ack.Utterances, totalBytes, time.Since(startTime).Round(time.Millisecond))
}
